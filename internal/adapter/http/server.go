package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/irrigation-advisor/internal/advisory"
	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// Advisor computes advisories for API requests.
type Advisor interface {
	Advise(ctx context.Context, req advisory.Request) (domain.AdvisoryEvent, error)
	AdviseBatch(ctx context.Context, reqs []advisory.Request) ([]advisory.BatchItem, error)
	Parameters() domain.Catalog
}

// Server exposes the advisory API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	advisor    Advisor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /v1 routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, advisor Advisor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		advisor: advisor,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/parameters", s.handleParameters)
	mux.HandleFunc("POST /v1/advisories", s.handleAdvise)
	mux.HandleFunc("POST /v1/advisories/batch", s.handleAdviseBatch)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
