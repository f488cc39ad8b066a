package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/config"
	"github.com/brojonat/solroast/service/db"
	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/metrics"
	natspkg "github.com/brojonat/solroast/service/nats"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/solana"
	"github.com/brojonat/solroast/service/temporal"
)

func main() {
	// Load and validate configuration from environment
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting temporal worker",
		"temporal_host", cfg.TemporalHost,
		"namespace", cfg.TemporalNamespace,
		"task_queue", cfg.TemporalTaskQueue,
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	store := db.NewStore(dbPool)

	// Initialize Prometheus metrics collector
	metricsCollector := metrics.NewMetrics(nil) // nil uses default registry

	// Start metrics HTTP server
	metricsAddr := getEnv("METRICS_ADDR", ":9091")
	metricsServer := &http.Server{
		Addr:    metricsAddr,
		Handler: promhttp.Handler(),
	}

	go func() {
		logger.Info("starting metrics HTTP server", "addr", metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", "error", err)
		}
	}()

	// Initialize upstream providers and the analyzer
	solanaRPC := solana.NewRPCClient(cfg.SolanaRPCURL)
	solanaClient := solana.NewClient(solanaRPC, logger, metricsCollector)

	heliusClient := helius.NewClient(cfg.HeliusBaseURL, cfg.HeliusAPIKey, logger, metricsCollector)
	tokenList := refdata.NewTokenListCache(cfg.TokenListURL, cfg.TokenListTTL, logger, metricsCollector)
	priceClient := refdata.NewPriceClient(cfg.PriceAPIURL, logger, metricsCollector)

	walletAnalyzer := analyzer.New(solanaClient, heliusClient, tokenList, priceClient, analyzer.Options{
		Timeout:            cfg.AnalysisTimeout,
		SignaturePageLimit: cfg.SignaturePageLimit,
		MaxSignaturePages:  cfg.MaxSignaturePages,
		MaxHistoryPages:    cfg.MaxHistoryPages,
		MaxSampledBodies:   cfg.MaxSampledBodies,
	}, logger, metricsCollector)

	// Initialize NATS publisher. Refresh events are best-effort; the
	// worker still runs without them.
	var publisher temporal.PublisherInterface
	jsPublisher, err := natspkg.NewPublisher(cfg.NATSURL, logger, metricsCollector)
	if err != nil {
		logger.Warn("failed to create NATS publisher, refresh events disabled", "error", err)
	} else {
		publisher = jsPublisher
		defer jsPublisher.Close()
		logger.Info("connected to NATS", "url", cfg.NATSURL)
	}

	// Initialize Temporal client for schedule management and ensure the
	// recurring refresh sweep exists
	temporalClient, err := temporal.NewClient(
		cfg.TemporalHost,
		cfg.TemporalNamespace,
		cfg.TemporalTaskQueue,
		logger,
	)
	if err != nil {
		logger.Error("failed to create temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	sweepInterval := cfg.AnalysisCacheTTL / 4
	if sweepInterval < time.Minute {
		sweepInterval = time.Minute
	}
	if err := temporalClient.EnsureSweepSchedule(ctx, sweepInterval, cfg.AnalysisCacheTTL, 50); err != nil {
		logger.Error("failed to ensure sweep schedule", "error", err)
		os.Exit(1)
	}

	// Initialize Temporal worker
	workerConfig := temporal.WorkerConfig{
		TemporalHost:      cfg.TemporalHost,
		TemporalNamespace: cfg.TemporalNamespace,
		TaskQueue:         cfg.TemporalTaskQueue,
		Analyzer:          walletAnalyzer,
		Store:             store,
		Publisher:         publisher,
		Metrics:           metricsCollector,
		Logger:            logger,
	}

	worker, err := temporal.NewWorker(workerConfig)
	if err != nil {
		logger.Error("failed to create temporal worker", "error", err)
		os.Exit(1)
	}

	logger.Info("temporal worker initialized, all dependencies ready",
		"temporal_host", cfg.TemporalHost,
		"temporal_namespace", cfg.TemporalNamespace,
		"task_queue", cfg.TemporalTaskQueue,
		"sweep_interval", sweepInterval,
	)

	// Start worker in background
	workerErrors := make(chan error, 1)
	go func() {
		logger.Info("starting temporal worker")
		workerErrors <- worker.Start()
	}()

	// Wait for shutdown signal or worker error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-workerErrors:
		logger.Error("temporal worker error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		logger.Info("stopping temporal worker")
		worker.Stop()
		logger.Info("shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// getEnv returns the value of an environment variable or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
