// Package server exposes the roast service over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brojonat/solroast/service/config"
	"github.com/brojonat/solroast/service/metrics"
	natspkg "github.com/brojonat/solroast/service/nats"
)

// Server represents the HTTP server for the roast service.
type Server struct {
	addr      string
	cfg       *config.Config
	store     AnalysisStore
	analyzer  AnalyzerService
	engine    RoastGenerator
	publisher natspkg.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The publisher is optional - if nil, roast events won't be published.
// The metrics is optional - if nil, no metrics endpoint is exposed.
func New(addr string, cfg *config.Config, store AnalysisStore, an AnalyzerService, engine RoastGenerator, publisher natspkg.Publisher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:      addr,
		cfg:       cfg,
		store:     store,
		analyzer:  an,
		engine:    engine,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Start starts the HTTP server. Blocks until Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	deps := roastDeps{
		store:     s.store,
		analyzer:  s.analyzer,
		engine:    s.engine,
		publisher: s.publisher,
		limiter:   newRateLimiter(s.cfg.RoastRateLimit, time.Hour),
		cache:     newRoastCache(time.Hour),
		cacheTTL:  s.cfg.AnalysisCacheTTL,
		metrics:   s.metrics,
		logger:    s.logger,
	}

	mux.Handle("POST /api/v1/roast",
		s.metrics.HTTPMiddleware("/api/v1/roast", handleRoast(deps)))
	mux.Handle("GET /api/v1/analyses/{wallet}",
		s.metrics.HTTPMiddleware("/api/v1/analyses/{wallet}", handleGetAnalysis(s.store, s.analyzer, s.cfg.AnalysisCacheTTL, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/roasts/recent",
		s.metrics.HTTPMiddleware("/api/v1/roasts/recent", handleRecentRoasts(s.store, s.logger)))
	mux.Handle("GET /api/v1/stats",
		s.metrics.HTTPMiddleware("/api/v1/stats", handleStats(s.store, s.logger)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // roast requests can take a while when the analysis is cold
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
