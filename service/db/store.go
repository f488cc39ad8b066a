// Package db persists analyses and roasts in PostgreSQL via pgx.
package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brojonat/solroast/service/analyzer"
	"github.com/brojonat/solroast/service/roast"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store provides database operations for the service.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store with the given database connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RunMigrations applies embedded SQL migrations in lexicographic order,
// tracking applied files in a schema_migrations table.
func (s *Store) RunMigrations(ctx context.Context) error {
	const createTracker = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`
	if _, err := s.pool.Exec(ctx, createTracker); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var applied bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)",
			entry.Name(),
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", entry.Name(), err)
		}
		if applied {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin tx for %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to apply migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (filename) VALUES ($1)", entry.Name(),
		); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %s: %w", entry.Name(), err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// StoredAnalysis is a cached analysis with its freshness timestamp.
type StoredAnalysis struct {
	Wallet     string
	Analysis   *analyzer.Result
	AnalyzedAt time.Time
}

// UpsertAnalysis stores or replaces the cached analysis for a wallet.
func (s *Store) UpsertAnalysis(ctx context.Context, wallet string, analysis *analyzer.Result) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	const query = `
		INSERT INTO wallet_analyses (wallet, analysis, analyzed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (wallet)
		DO UPDATE SET analysis = EXCLUDED.analysis, analyzed_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, wallet, payload); err != nil {
		return fmt.Errorf("failed to upsert analysis for %s: %w", wallet, err)
	}
	return nil
}

// GetAnalysis retrieves the cached analysis for a wallet regardless of
// age. Returns ErrNotFound if the wallet was never analyzed.
func (s *Store) GetAnalysis(ctx context.Context, wallet string) (*StoredAnalysis, error) {
	const query = `SELECT wallet, analysis, analyzed_at FROM wallet_analyses WHERE wallet = $1`

	var stored StoredAnalysis
	var payload []byte
	err := s.pool.QueryRow(ctx, query, wallet).Scan(&stored.Wallet, &payload, &stored.AnalyzedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis for %s: %w", wallet, err)
	}

	stored.Analysis = &analyzer.Result{}
	if err := json.Unmarshal(payload, stored.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis for %s: %w", wallet, err)
	}
	return &stored, nil
}

// GetFreshAnalysis retrieves the cached analysis for a wallet if it is
// newer than the TTL. Returns ErrNotFound for a miss or a stale row.
func (s *Store) GetFreshAnalysis(ctx context.Context, wallet string, ttl time.Duration) (*StoredAnalysis, error) {
	stored, err := s.GetAnalysis(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if time.Since(stored.AnalyzedAt) > ttl {
		return nil, ErrNotFound
	}
	return stored, nil
}

// StoredRoast is a persisted roast row.
type StoredRoast struct {
	ID        int64
	Wallet    string
	Roast     *roast.Roast
	CreatedAt time.Time
}

// SaveRoast appends a roast for a wallet and returns its id.
func (s *Store) SaveRoast(ctx context.Context, wallet string, r *roast.Roast) (int64, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal roast: %w", err)
	}

	const query = `
		INSERT INTO roasts (wallet, persona, title, degen_score, summary, roast)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err = s.pool.QueryRow(ctx, query,
		wallet, r.Persona, r.Title, r.DegenScore, r.Summary, payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save roast for %s: %w", wallet, err)
	}
	return id, nil
}

// RecentRoasts returns the most recent roasts, newest first.
func (s *Store) RecentRoasts(ctx context.Context, limit int) ([]*StoredRoast, error) {
	const query = `
		SELECT id, wallet, roast, created_at
		FROM roasts
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent roasts: %w", err)
	}
	defer rows.Close()

	var out []*StoredRoast
	for rows.Next() {
		var stored StoredRoast
		var payload []byte
		if err := rows.Scan(&stored.ID, &stored.Wallet, &payload, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roast row: %w", err)
		}
		stored.Roast = &roast.Roast{}
		if err := json.Unmarshal(payload, stored.Roast); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roast %d: %w", stored.ID, err)
		}
		out = append(out, &stored)
	}
	return out, rows.Err()
}

// RoastsForWallet returns a wallet's roasts, newest first.
func (s *Store) RoastsForWallet(ctx context.Context, wallet string, limit int) ([]*StoredRoast, error) {
	const query = `
		SELECT id, wallet, roast, created_at
		FROM roasts
		WHERE wallet = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list roasts for %s: %w", wallet, err)
	}
	defer rows.Close()

	var out []*StoredRoast
	for rows.Next() {
		var stored StoredRoast
		var payload []byte
		if err := rows.Scan(&stored.ID, &stored.Wallet, &payload, &stored.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roast row: %w", err)
		}
		stored.Roast = &roast.Roast{}
		if err := json.Unmarshal(payload, stored.Roast); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roast %d: %w", stored.ID, err)
		}
		out = append(out, &stored)
	}
	return out, rows.Err()
}

// ServiceStats summarizes roast volume across all wallets.
type ServiceStats struct {
	TotalRoasts   int64   `json:"total_roasts"`
	UniqueWallets int64   `json:"unique_wallets"`
	AvgDegenScore float64 `json:"avg_degen_score"`
}

// Stats returns aggregate roast counts.
func (s *Store) Stats(ctx context.Context) (*ServiceStats, error) {
	const query = `
		SELECT COUNT(*),
		       COUNT(DISTINCT wallet),
		       COALESCE(AVG(degen_score), 0)::float8
		FROM roasts`

	var stats ServiceStats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalRoasts, &stats.UniqueWallets, &stats.AvgDegenScore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// StaleWallets lists wallets whose cached analysis is older than the
// TTL. The refresh workflow re-analyzes these.
func (s *Store) StaleWallets(ctx context.Context, ttl time.Duration, limit int) ([]string, error) {
	const query = `
		SELECT wallet
		FROM wallet_analyses
		WHERE analyzed_at < NOW() - ($1 * INTERVAL '1 second')
		ORDER BY analyzed_at ASC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, ttl.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale wallets: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
