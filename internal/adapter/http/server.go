package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/perfect-day/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errNoReport = errors.New("report not computed yet")

// Server exposes health, readiness, metrics, and the latest report.
// It reports ready once a report has been set.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	report     atomic.Pointer[report.Report]
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /report routes.
func NewServer(addr string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(s))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", s.handleReport)

	return s
}

// SetReport publishes r on /report and marks the server ready.
func (s *Server) SetReport(r report.Report) {
	s.report.Store(&r)
}

// CheckReadiness implements the shared readiness checker.
func (s *Server) CheckReadiness(_ context.Context) error {
	if s.report.Load() == nil {
		return errNoReport
	}
	return nil
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

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.report.Load()
	if rep == nil {
		http.Error(w, errNoReport.Error(), http.StatusServiceUnavailable)
		return
	}

	var err error
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = report.WriteText(w, *rep)
	} else {
		w.Header().Set("Content-Type", "application/json")
		err = report.WriteJSON(w, *rep)
	}
	if err != nil {
		s.logger.Error("write report response", "error", err)
	}
}
