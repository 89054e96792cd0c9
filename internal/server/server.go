// Package server exposes the classification engine over HTTP: one-shot
// parse/summary/export endpoints plus a live ingest feed with websocket
// subscribers.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
	"golang.org/x/crypto/bcrypt"

	"github.com/cisec/logsift/internal/config"
	"github.com/cisec/logsift/internal/pipeline"
)

// Server is the logsift API server. The pipeline it wraps is stateless;
// the only shared state is the set of stream subscribers.
type Server struct {
	cfg      config.ServerSettings
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	upgrader websocket.Upgrader
	parsers  fastjson.ParserPool
	hub      *hub
	srv      *http.Server
}

// New creates a Server around a classification pipeline.
func New(cfg config.ServerSettings, p *pipeline.Pipeline, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger.With().Str("component", "server").Logger(),
		pipeline: p,
		hub:      newHub(cfg.StreamBuffer),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestLogger)

	router.HandleFunc("/api/healthz", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/parse", s.handleParse).Methods("POST")
	api.HandleFunc("/summary", s.handleSummary).Methods("POST")
	api.HandleFunc("/export", s.handleExport).Methods("POST")
	api.HandleFunc("/ingest", s.handleIngest).Methods("POST")
	api.HandleFunc("/stream", s.handleStream).Methods("GET")

	return router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info().Str("listen", s.cfg.Listen).Msg("Starting API server")

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and closes all stream
// subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// authMiddleware checks the Authorization bearer token against the
// configured bcrypt hash. Authentication is disabled when no hash is
// configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKeyHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		} else {
			token = r.URL.Query().Get("token")
		}

		if token == "" {
			http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.APIKeyHash), []byte(token)); err != nil {
			s.logger.Warn().Str("remote", r.RemoteAddr).Msg("Rejected API key")
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one event per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
