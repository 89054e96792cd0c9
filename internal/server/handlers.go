package server

import (
	"encoding/json"
	"net/http"

	"github.com/cisec/logsift/internal/export"
	"github.com/cisec/logsift/internal/record"
	"github.com/cisec/logsift/internal/summary"
)

// handleParse classifies the submitted lines and responds with the filtered
// records as a JSON array.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	records, req, ok := s.classify(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, records, export.Options{Year: req.year}); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write parse response")
	}
}

// handleSummary classifies the submitted lines and responds with the
// aggregate summary over the filtered records.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, req, ok := s.classify(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary.Summarize(records, req.topN)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write summary response")
	}
}

// handleExport streams the filtered records in the requested format:
// csv, json or ndjson.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	records, req, ok := s.classify(w, r)
	if !ok {
		return
	}
	opts := export.Options{Year: req.year}

	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, records, opts)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = export.WriteJSON(w, records, opts)
	case "ndjson":
		w.Header().Set("Content-Type", "application/x-ndjson")
		opts.NDJSON = true
		err = export.WriteJSON(w, records, opts)
	default:
		http.Error(w, "unsupported format: "+format, http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("format", format).Msg("Failed to write export")
	}
}

// handleIngest classifies the submitted lines and broadcasts each record to
// the stream subscribers.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	records, req, ok := s.classify(w, r)
	if !ok {
		return
	}

	classified := 0
	for _, rec := range records {
		if rec.EventType != record.EventUnclassified {
			classified++
		}
		msg, err := json.Marshal(export.Object(rec, export.Options{Year: req.year}))
		if err != nil {
			continue
		}
		s.hub.broadcast(msg)
	}

	s.logger.Info().
		Int("records", len(records)).
		Int("classified", classified).
		Int("subscribers", s.hub.count()).
		Msg("Ingested batch")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"records":    len(records),
		"classified": classified,
	})
}

// classify runs the shared request flow: decode, process, compile and apply
// the filter. On failure it writes the HTTP error and returns ok=false.
func (s *Server) classify(w http.ResponseWriter, r *http.Request) ([]record.Record, *parseRequest, bool) {
	req, err := s.decodeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	f, err := req.spec.Compile()
	if err != nil {
		http.Error(w, "invalid filter: "+err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}

	records := f.Apply(s.pipeline.Process(req.lines))
	return records, req, true
}
