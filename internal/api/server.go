package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marlinhq/marlin/internal/api/handler"
	"github.com/marlinhq/marlin/internal/api/job"
	"github.com/marlinhq/marlin/internal/api/middleware"
	"github.com/marlinhq/marlin/internal/api/response"
	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/metrics"
	"github.com/marlinhq/marlin/internal/storage/archive"
	"github.com/marlinhq/marlin/internal/storage/results"
	"github.com/marlinhq/marlin/internal/strategy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the backtest service.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	JobTTL      time.Duration
	MaxJobs     int
	MetricsPath string // empty disables the metrics endpoint
}

// Deps carries the wired components the handlers need. Archiver and
// Metrics may be nil.
type Deps struct {
	Runner     *backtest.Runner
	Strategies *strategy.Registry
	Results    results.Store
	Archiver   *archive.Archiver
	Metrics    *metrics.Registry
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Deps) {
	jobs := job.NewStore(cfg.MaxJobs, cfg.JobTTL)
	backtests := handler.NewBacktestHandler(jobs, deps.Runner, deps.Results,
		deps.Archiver, deps.Metrics, s.logger)
	resultsHandler := handler.NewResultsHandler(deps.Results)
	strategies := handler.NewStrategiesHandler(deps.Strategies)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/backtests", backtests.Create)
	apiMux.HandleFunc("GET /api/backtests/{id}", backtests.GetStatus)
	apiMux.HandleFunc("GET /api/results", resultsHandler.List)
	apiMux.HandleFunc("GET /api/results/{id}", resultsHandler.Get)
	apiMux.HandleFunc("GET /api/strategies", strategies.List)

	// API routes sit behind auth; health and metrics stay open.
	var apiHandler http.Handler = apiMux
	apiHandler = middleware.APIKeyAuth(cfg.APIKey)(apiHandler)
	if deps.Metrics != nil {
		apiHandler = metrics.HTTPMiddleware(deps.Metrics)(apiHandler)
	}
	apiHandler = metrics.LoggingMiddleware(s.logger)(apiHandler)
	s.mux.Handle("/api/", apiHandler)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(
			deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the root mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
