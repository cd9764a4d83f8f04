// Package api implements the HTTP API for layout resolution.
//
// The API exposes the same pipeline the CLI uses:
//
//	GET  /healthz     - liveness probe
//	POST /v1/layout   - resolve a scene into rectangles
//	POST /v1/hittest  - point query against a resolved scene
//
// Scenes are submitted inline as TOML; responses are JSON. Every request
// is tagged with a request id (X-Request-ID) which is echoed back and
// attached to all log lines for that request.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/anchorage/pkg/pipeline"
)

// Server handles HTTP requests for layout resolution.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server backed by the given pipeline runner.
// If logger is nil, log.Default() is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/hittest", s.handleHitTest)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON shape of all error replies.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		RequestID: requestIDFrom(r.Context()),
	})
}
