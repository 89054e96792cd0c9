package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/cisec/logsift/internal/filter"
	"github.com/cisec/logsift/internal/reader"
)

// parseRequest is the decoded body of the parse/summary/export/ingest
// endpoints: the input lines plus the optional year, top-N bound and filter
// criteria.
type parseRequest struct {
	lines []string
	year  int
	topN  int
	spec  filter.Spec
}

// decodeRequest decodes the request body. JSON bodies carry
// {"lines": [...], "year": N, "top": N, "filter": {...}}; any other content
// type is treated as raw log text, one line per record.
func (s *Server) decodeRequest(r *http.Request) (*parseRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		return s.decodeJSONRequest(body)
	}

	lines, err := reader.Lines(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	req := &parseRequest{lines: lines}
	if year := r.URL.Query().Get("year"); year != "" {
		if _, err := fmt.Sscanf(year, "%d", &req.year); err != nil {
			return nil, fmt.Errorf("invalid year %q", year)
		}
	}
	return req, nil
}

func (s *Server) decodeJSONRequest(body []byte) (*parseRequest, error) {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parsing request JSON: %w", err)
	}

	req := &parseRequest{
		year: v.GetInt("year"),
		topN: v.GetInt("top"),
	}

	for _, lv := range v.GetArray("lines") {
		b, err := lv.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("lines must be strings")
		}
		line := strings.ToValidUTF8(string(b), "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		req.lines = append(req.lines, line)
	}

	if fv := v.Get("filter"); fv != nil {
		req.spec = filter.Spec{
			Facilities: stringArray(fv, "facilities"),
			Mnemonics:  stringArray(fv, "mnemonics"),
			EventTypes: stringArray(fv, "event_types"),
			Interfaces: stringArray(fv, "interfaces"),
			Users:      stringArray(fv, "users"),
			Field:      string(fv.GetStringBytes("field")),
			Pattern:    string(fv.GetStringBytes("pattern")),
		}
		for _, sv := range fv.GetArray("severities") {
			n, err := sv.Int()
			if err != nil {
				return nil, fmt.Errorf("severities must be integers")
			}
			req.spec.Severities = append(req.spec.Severities, n)
		}
	}

	return req, nil
}

func stringArray(v *fastjson.Value, key string) []string {
	var out []string
	for _, item := range v.GetArray(key) {
		out = append(out, string(item.GetStringBytes()))
	}
	return out
}
