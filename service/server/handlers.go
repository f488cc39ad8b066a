package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/db"
	"github.com/brojonat/solroast/service/metrics"
	natspkg "github.com/brojonat/solroast/service/nats"
	"github.com/brojonat/solroast/service/roast"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Base58 alphabet, no 0, O, I, l. Solana addresses are 32-44 chars.
var validWalletRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// AnalyzerService runs a full wallet analysis.
type AnalyzerService interface {
	Analyze(ctx context.Context, wallet string) (*analyzer.Result, error)
}

// RoastGenerator turns an analysis into a roast.
type RoastGenerator interface {
	Generate(ctx context.Context, analysis *analyzer.Result, persona string) (*roast.Roast, error)
}

// AnalysisStore defines the database operations the handlers need.
type AnalysisStore interface {
	UpsertAnalysis(ctx context.Context, wallet string, analysis *analyzer.Result) error
	GetFreshAnalysis(ctx context.Context, wallet string, ttl time.Duration) (*db.StoredAnalysis, error)
	SaveRoast(ctx context.Context, wallet string, r *roast.Roast) (int64, error)
	RecentRoasts(ctx context.Context, limit int) ([]*db.StoredRoast, error)
	Stats(ctx context.Context) (*db.ServiceStats, error)
}

type roastRequest struct {
	Wallet  string `json:"wallet"`
	Persona string `json:"persona"`
}

// roastDeps bundles everything the roast handler touches.
type roastDeps struct {
	store     AnalysisStore
	analyzer  AnalyzerService
	engine    RoastGenerator
	publisher natspkg.Publisher
	limiter   *rateLimiter
	cache     *roastCache
	cacheTTL  time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// handleRoast returns the handler for generating a roast.
// POST /api/v1/roast
func handleRoast(deps roastDeps) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !deps.limiter.allow(clientIP) {
			deps.logger.Debug("rate limit exceeded", "ip", clientIP)
			w.Header().Set("Retry-After", "3600")
			writeError(w, "rate limit exceeded, try again later", http.StatusTooManyRequests)
			return
		}

		var req roastRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := validateWallet(req.Wallet); err != nil {
			deps.logger.Debug("invalid wallet", "wallet", req.Wallet, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if cached, ok := deps.cache.get(req.Wallet, req.Persona); ok {
			deps.metrics.RecordCacheLookup("memory", "hit")
			deps.logger.Debug("roast cache hit", "wallet", req.Wallet, "persona", req.Persona)
			writeJSON(w, cached, http.StatusOK)
			return
		}
		deps.metrics.RecordCacheLookup("memory", "miss")

		analysis, status, err := getOrAnalyze(r.Context(), deps.store, deps.analyzer, deps.metrics, deps.logger, req.Wallet, deps.cacheTTL)
		if err != nil {
			writeError(w, err.Error(), status)
			return
		}

		generated, err := deps.engine.Generate(r.Context(), analysis, req.Persona)
		if err != nil {
			deps.logger.Error("roast generation failed",
				"wallet", req.Wallet,
				"persona", req.Persona,
				"error", err,
			)
			writeError(w, "roast generation failed, try again", http.StatusBadGateway)
			return
		}

		if _, err := deps.store.SaveRoast(r.Context(), req.Wallet, generated); err != nil {
			// The roast is still good; losing the history row is not
			// worth a 500.
			deps.logger.Warn("failed to persist roast", "wallet", req.Wallet, "error", err)
		}

		if deps.publisher != nil {
			event := &natspkg.RoastEvent{
				Wallet:     req.Wallet,
				Title:      generated.Title,
				Persona:    generated.Persona,
				DegenScore: generated.DegenScore,
				Summary:    generated.Summary,
				CreatedAt:  time.Now().UTC(),
			}
			if err := deps.publisher.PublishRoast(r.Context(), event); err != nil {
				deps.logger.Warn("failed to publish roast event", "wallet", req.Wallet, "error", err)
			}
		}

		deps.cache.put(req.Wallet, req.Persona, generated)

		deps.logger.Info("roast served",
			"wallet", req.Wallet,
			"persona", generated.Persona,
			"degen_score", generated.DegenScore,
		)
		writeJSON(w, generated, http.StatusOK)
	})
}

// getOrAnalyze returns a fresh analysis for the wallet, preferring the
// database cache. On a miss it runs a full analysis and persists it.
// The returned status code is meaningful only when err is non-nil.
func getOrAnalyze(ctx context.Context, store AnalysisStore, an AnalyzerService, m *metrics.Metrics, logger *slog.Logger, wallet string, ttl time.Duration) (*analyzer.Result, int, error) {
	stored, err := store.GetFreshAnalysis(ctx, wallet, ttl)
	if err == nil {
		m.RecordCacheLookup("db", "hit")
		return stored.Analysis, 0, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		logger.Warn("analysis cache lookup failed", "wallet", wallet, "error", err)
	}
	m.RecordCacheLookup("db", "miss")

	analysis, err := an.Analyze(ctx, wallet)
	if err != nil {
		if errors.Is(err, analyzer.ErrAnalysisTimeout) {
			logger.Warn("analysis timed out", "wallet", wallet)
			return nil, http.StatusGatewayTimeout, fmt.Errorf("analysis took too long, this wallet has a lot of history; try again")
		}
		logger.Error("analysis failed", "wallet", wallet, "error", err)
		return nil, http.StatusBadGateway, fmt.Errorf("failed to analyze wallet")
	}

	if err := store.UpsertAnalysis(ctx, wallet, analysis); err != nil {
		logger.Warn("failed to cache analysis", "wallet", wallet, "error", err)
	}
	return analysis, 0, nil
}

// handleGetAnalysis returns the handler for fetching a wallet analysis.
// GET /api/v1/analyses/{wallet}
func handleGetAnalysis(store AnalysisStore, an AnalyzerService, cacheTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet := r.PathValue("wallet")
		if err := validateWallet(wallet); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		analysis, status, err := getOrAnalyze(r.Context(), store, an, m, logger, wallet, cacheTTL)
		if err != nil {
			writeError(w, err.Error(), status)
			return
		}

		writeJSON(w, analysis, http.StatusOK)
	})
}

// handleRecentRoasts returns the handler for listing recent roasts.
// GET /api/v1/roasts/recent?limit=20
func handleRecentRoasts(store AnalysisStore, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeError(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}

		roasts, err := store.RecentRoasts(r.Context(), limit)
		if err != nil {
			logger.Error("failed to list recent roasts", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		type recentRoast struct {
			Wallet     string    `json:"wallet"`
			Title      string    `json:"title"`
			Persona    string    `json:"persona"`
			DegenScore int       `json:"degen_score"`
			Summary    string    `json:"summary"`
			CreatedAt  time.Time `json:"created_at"`
		}
		resp := make([]recentRoast, len(roasts))
		for i, stored := range roasts {
			resp[i] = recentRoast{
				Wallet:     stored.Wallet,
				Title:      stored.Roast.Title,
				Persona:    stored.Roast.Persona,
				DegenScore: stored.Roast.DegenScore,
				Summary:    stored.Roast.Summary,
				CreatedAt:  stored.CreatedAt,
			}
		}

		writeJSON(w, map[string]interface{}{"roasts": resp}, http.StatusOK)
	})
}

// handleStats returns the handler for service-wide stats.
// GET /api/v1/stats
func handleStats(store AnalysisStore, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			logger.Error("failed to get stats", "error", err)
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, stats, http.StatusOK)
	})
}

// validateWallet checks the address against the Solana base58 format.
func validateWallet(wallet string) error {
	if wallet == "" {
		return fmt.Errorf("wallet is required")
	}
	if !validWalletRegex.MatchString(wallet) {
		return fmt.Errorf("invalid wallet address")
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
