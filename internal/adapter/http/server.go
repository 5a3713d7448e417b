package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dashboard"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard answers the page's data requests.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Options() (dashboard.Options, error)
	MapView(ctx context.Context, q dashboard.MapQuery) (dashboard.MapResult, error)
	SeriesView(ctx context.Context, q dashboard.SeriesQuery) (dashboard.SeriesResult, error)
}

// Server exposes the dashboard page, its JSON API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	views      Dashboard
	page       PageConfig
	validate   *validator.Validate
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, views Dashboard, page PageConfig, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:    views,
		page:     page,
		validate: newValidator(),
		logger:   logger,
		metrics:  metrics,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(views))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	opts, err := s.views.Options()
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, opts)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseMapQuery(r)
	if err != nil {
		s.writeBadRequest(w, "map", err)
		return
	}
	res, err := s.views.MapView(r.Context(), q)
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseSeriesQuery(r)
	if err != nil {
		s.writeBadRequest(w, "series", err)
		return
	}
	res, err := s.views.SeriesView(r.Context(), q)
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, view string, err error) {
	s.metrics.InvalidRequests.WithLabelValues(view).Inc()
	s.logger.Debug("rejected view request", "view", view, "error", err)
	sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) writeViewError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrNotReady) {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Error("view failed", "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
