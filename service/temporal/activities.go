// Package temporal runs the background analysis-refresh pipeline.
// Cached analyses go stale after a TTL; a scheduled sweep workflow
// finds stale wallets and re-analyzes each one through a child
// workflow so failures are isolated per wallet.
package temporal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/metrics"
	natspkg "github.com/brojonat/solroast/service/nats"
)

// RefreshWalletInput contains the input for refreshing one wallet.
type RefreshWalletInput struct {
	Wallet string `json:"wallet"`
}

// RefreshWalletResult contains the result of refreshing one wallet.
type RefreshWalletResult struct {
	Wallet      string    `json:"wallet"`
	RefreshedAt time.Time `json:"refreshed_at"`
	TxCount     int       `json:"tx_count"`
	Error       *string   `json:"error,omitempty"`
}

// SweepInput contains the input for a refresh sweep.
type SweepInput struct {
	TTL       time.Duration `json:"ttl"`
	BatchSize int           `json:"batch_size"`
}

// SweepResult contains the result of a refresh sweep.
type SweepResult struct {
	Stale     int `json:"stale"`
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// AnalyzeWalletInput contains parameters for the AnalyzeWallet activity.
type AnalyzeWalletInput struct {
	Wallet string `json:"wallet"`
}

// AnalyzeWalletResult contains the analysis produced by the activity.
type AnalyzeWalletResult struct {
	Analysis *analyzer.Result `json:"analysis"`
}

// PersistAnalysisInput contains parameters for the PersistAnalysis activity.
type PersistAnalysisInput struct {
	Wallet   string           `json:"wallet"`
	Analysis *analyzer.Result `json:"analysis"`
}

// PublishAnalysisInput contains parameters for the PublishAnalysis activity.
type PublishAnalysisInput struct {
	Wallet   string           `json:"wallet"`
	Analysis *analyzer.Result `json:"analysis"`
}

// GetStaleWalletsInput contains parameters for the GetStaleWallets activity.
type GetStaleWalletsInput struct {
	TTL   time.Duration `json:"ttl"`
	Limit int           `json:"limit"`
}

// GetStaleWalletsResult contains the wallets needing a refresh.
type GetStaleWalletsResult struct {
	Wallets []string `json:"wallets"`
}

// AnalyzerInterface defines the analysis operation needed by activities.
// This allows for easy mocking in tests.
type AnalyzerInterface interface {
	Analyze(ctx context.Context, wallet string) (*analyzer.Result, error)
}

// StoreInterface defines the database operations needed by activities.
// This allows for easy mocking in tests.
type StoreInterface interface {
	UpsertAnalysis(ctx context.Context, wallet string, analysis *analyzer.Result) error
	StaleWallets(ctx context.Context, ttl time.Duration, limit int) ([]string, error)
}

// PublisherInterface defines the event publishing operation needed by
// activities. This allows for easy mocking in tests.
type PublisherInterface interface {
	PublishAnalysis(ctx context.Context, event *natspkg.AnalysisEvent) error
}

// Activities holds the dependencies needed by Temporal activities.
type Activities struct {
	analyzer  AnalyzerInterface
	store     StoreInterface
	publisher PublisherInterface
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewActivities creates a new Activities instance with explicit dependencies.
// If metrics is nil, no metrics will be recorded. If publisher is nil,
// refresh events are not published.
func NewActivities(an AnalyzerInterface, store StoreInterface, pub PublisherInterface, m *metrics.Metrics, logger *slog.Logger) *Activities {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activities{
		analyzer:  an,
		store:     store,
		publisher: pub,
		metrics:   m,
		logger:    logger,
	}
}

// AnalyzeWallet runs a full analysis of one wallet.
func (a *Activities) AnalyzeWallet(ctx context.Context, input AnalyzeWalletInput) (*AnalyzeWalletResult, error) {
	a.logger.DebugContext(ctx, "analyzing wallet", "wallet", input.Wallet)

	result, err := a.analyzer.Analyze(ctx, input.Wallet)
	if err != nil {
		a.logger.ErrorContext(ctx, "wallet analysis failed",
			"wallet", input.Wallet,
			"error", err,
		)
		return nil, fmt.Errorf("failed to analyze wallet %s: %w", input.Wallet, err)
	}

	a.logger.InfoContext(ctx, "wallet analyzed",
		"wallet", input.Wallet,
		"tx_count", result.TransactionCount,
		"has_helius", result.HasHelius,
	)
	return &AnalyzeWalletResult{Analysis: result}, nil
}

// PersistAnalysis writes a refreshed analysis to the database cache.
func (a *Activities) PersistAnalysis(ctx context.Context, input PersistAnalysisInput) error {
	if err := a.store.UpsertAnalysis(ctx, input.Wallet, input.Analysis); err != nil {
		a.logger.ErrorContext(ctx, "failed to persist analysis",
			"wallet", input.Wallet,
			"error", err,
		)
		return fmt.Errorf("failed to persist analysis for %s: %w", input.Wallet, err)
	}

	a.logger.DebugContext(ctx, "analysis persisted", "wallet", input.Wallet)
	return nil
}

// PublishAnalysis emits a refreshed-analysis event to NATS. It is a
// no-op when no publisher is configured.
func (a *Activities) PublishAnalysis(ctx context.Context, input PublishAnalysisInput) error {
	if a.publisher == nil {
		a.logger.DebugContext(ctx, "no publisher configured, skipping analysis event", "wallet", input.Wallet)
		return nil
	}

	event := &natspkg.AnalysisEvent{
		Wallet:           input.Wallet,
		TransactionCount: input.Analysis.TransactionCount,
		EstimatedPnLSOL:  input.Analysis.EstimatedPnlSol,
		AnalyzedAt:       time.Now().UTC(),
	}
	if err := a.publisher.PublishAnalysis(ctx, event); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish analysis event",
			"wallet", input.Wallet,
			"error", err,
		)
		return fmt.Errorf("failed to publish analysis event for %s: %w", input.Wallet, err)
	}

	a.logger.DebugContext(ctx, "analysis event published", "wallet", input.Wallet)
	return nil
}

// GetStaleWallets lists wallets whose cached analysis has expired.
func (a *Activities) GetStaleWallets(ctx context.Context, input GetStaleWalletsInput) (*GetStaleWalletsResult, error) {
	wallets, err := a.store.StaleWallets(ctx, input.TTL, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale wallets: %w", err)
	}

	a.logger.DebugContext(ctx, "found stale wallets", "count", len(wallets))
	return &GetStaleWalletsResult{Wallets: wallets}, nil
}
