package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/config"
	"github.com/brojonat/solroast/service/db"
	"github.com/brojonat/solroast/service/helius"
	"github.com/brojonat/solroast/service/metrics"
	natspkg "github.com/brojonat/solroast/service/nats"
	"github.com/brojonat/solroast/service/refdata"
	"github.com/brojonat/solroast/service/roast"
	"github.com/brojonat/solroast/service/server"
	"github.com/brojonat/solroast/service/solana"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
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
	if err := store.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Initialize Prometheus metrics collector
	metricsCollector := metrics.NewMetrics(nil) // nil uses default registry

	// Initialize upstream providers
	solanaRPC := solana.NewRPCClient(cfg.SolanaRPCURL)
	solanaClient := solana.NewClient(solanaRPC, logger, metricsCollector)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	heliusClient := helius.NewClient(cfg.HeliusBaseURL, cfg.HeliusAPIKey, logger, metricsCollector)
	if heliusClient.Enabled() {
		logger.Info("helius enhanced history enabled")
	} else {
		logger.Warn("HELIUS_API_KEY not set, falling back to raw RPC history sampling")
	}

	tokenList := refdata.NewTokenListCache(cfg.TokenListURL, cfg.TokenListTTL, logger, metricsCollector)
	priceClient := refdata.NewPriceClient(cfg.PriceAPIURL, logger, metricsCollector)

	// Initialize the wallet analyzer
	walletAnalyzer := analyzer.New(solanaClient, heliusClient, tokenList, priceClient, analyzer.Options{
		Timeout:            cfg.AnalysisTimeout,
		SignaturePageLimit: cfg.SignaturePageLimit,
		MaxSignaturePages:  cfg.MaxSignaturePages,
		MaxHistoryPages:    cfg.MaxHistoryPages,
		MaxSampledBodies:   cfg.MaxSampledBodies,
	}, logger, metricsCollector)

	// Initialize the roast engine
	if cfg.AnthropicAPIKey == "" {
		logger.Error("ANTHROPIC_API_KEY is required for roast generation")
		os.Exit(1)
	}
	llm := roast.NewAnthropicClient(cfg.AnthropicAPIKey)
	engine := roast.NewEngine(llm, logger, metricsCollector)

	// Initialize NATS publisher. Event publishing is best-effort; the
	// API still works without it.
	var publisher natspkg.Publisher
	jsPublisher, err := natspkg.NewPublisher(cfg.NATSURL, logger, metricsCollector)
	if err != nil {
		logger.Warn("failed to create NATS publisher, roast events disabled", "error", err)
	} else {
		publisher = jsPublisher
		defer jsPublisher.Close()
		logger.Info("connected to NATS", "url", cfg.NATSURL)
	}

	httpServer := server.New(cfg.ServerAddr, cfg, store, walletAnalyzer, engine, publisher, metricsCollector, logger)

	logger.Info("server initialized, all dependencies ready",
		"solana_rpc", cfg.SolanaRPCURL,
		"nats_url", cfg.NATSURL,
		"helius_enabled", heliusClient.Enabled(),
	)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
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
