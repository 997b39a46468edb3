package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docbundle/internal/pipeline"
)

// Server serves the most recent build: the page itself, run status and
// metrics.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	metrics      http.Handler
	log          *slog.Logger
}

// NewServer creates and configures the HTTP server. A nil metrics handler
// leaves /metrics unrouted.
func NewServer(orch *pipeline.Orchestrator, metrics http.Handler, log *slog.Logger) *Server {
	s := &Server{
		orchestrator: orch,
		metrics:      metrics,
		log:          log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/categories", s.handleCategories)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
