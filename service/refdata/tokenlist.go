// Package refdata holds the reference data the analyzer labels and
// values activity with: the remote token list and the compiled-in SOL
// price and market event tables.
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/brojonat/solroast/service/metrics"
)

const tokenListTimeout = 10 * time.Second

// TokenInfo is the metadata we keep for a known mint.
type TokenInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// tokenListEntry mirrors one record of the remote token list.
type tokenListEntry struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// TokenListCache caches the remote mint -> TokenInfo mapping with a TTL.
// On refresh failure the previous snapshot is served even when stale; an
// empty map is returned only when no fetch has ever succeeded. The clock
// is injectable so tests control staleness.
type TokenListCache struct {
	url     string
	ttl     time.Duration
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.RWMutex
	snapshot  map[string]TokenInfo
	fetchedAt time.Time
}

// NewTokenListCache creates a cache for the token list at url, refreshed
// at most every ttl.
func NewTokenListCache(url string, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *TokenListCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenListCache{
		url:     url,
		ttl:     ttl,
		http:    &http.Client{},
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Get returns the current mint -> TokenInfo snapshot, refreshing it when
// the TTL has lapsed. The returned map must be treated as read-only; it
// is shared between callers and replaced wholesale on refresh.
func (c *TokenListCache) Get(ctx context.Context) map[string]TokenInfo {
	c.mu.RLock()
	snapshot := c.snapshot
	fresh := snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl
	c.mu.RUnlock()
	if fresh {
		c.metrics.RecordCacheLookup("tokenlist", "hit")
		return snapshot
	}

	updated, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("token list refresh failed, serving stale snapshot",
			"error", err, "stale_entries", len(snapshot))
		c.metrics.RecordCacheLookup("tokenlist", "stale")
		if snapshot == nil {
			return map[string]TokenInfo{}
		}
		return snapshot
	}

	c.mu.Lock()
	c.snapshot = updated
	c.fetchedAt = c.now()
	c.mu.Unlock()
	c.metrics.RecordCacheLookup("tokenlist", "refresh")
	return updated
}

func (c *TokenListCache) fetch(ctx context.Context) (map[string]TokenInfo, error) {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, tokenListTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build token list request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordProviderCall("tokenlist", "get", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("token list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordProviderCall("tokenlist", "get", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("token list returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list: %w", err)
	}

	var entries []tokenListEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode token list: %w", err)
	}

	mapping := make(map[string]TokenInfo, len(entries))
	for _, e := range entries {
		if e.Address == "" {
			continue
		}
		mapping[e.Address] = TokenInfo{Symbol: e.Symbol, Name: e.Name}
	}
	c.metrics.RecordProviderCall("tokenlist", "get", "ok", time.Since(start).Seconds())
	return mapping, nil
}
