package refdata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(url string, ttl time.Duration) *TokenListCache {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTokenListCache(url, ttl, logger, nil)
}

func TestTokenListCache_FetchAndCache(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`[
			{"address":"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263","symbol":"BONK","name":"Bonk"},
			{"address":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","symbol":"USDC","name":"USD Coin"}
		]`))
	}))
	defer server.Close()

	cache := newTestCache(server.URL, time.Hour)

	list := cache.Get(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, "BONK", list["DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"].Symbol)

	// Within TTL the snapshot is reused.
	cache.Get(context.Background())
	assert.Equal(t, 1, fetches)
}

func TestTokenListCache_RefreshAfterTTL(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`[{"address":"mint1","symbol":"AAA","name":"Token A"}]`))
	}))
	defer server.Close()

	cache := newTestCache(server.URL, time.Hour)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Get(context.Background())
	assert.Equal(t, 1, fetches)

	now = now.Add(2 * time.Hour)
	cache.Get(context.Background())
	assert.Equal(t, 2, fetches)
}

func TestTokenListCache_StaleFallback(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"address":"mint1","symbol":"AAA","name":"Token A"}]`))
	}))
	defer server.Close()

	cache := newTestCache(server.URL, time.Hour)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	list := cache.Get(context.Background())
	require.Len(t, list, 1)

	// Source goes down after the TTL lapses; the stale snapshot survives.
	healthy = false
	now = now.Add(2 * time.Hour)
	list = cache.Get(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "AAA", list["mint1"].Symbol)
}

func TestTokenListCache_NeverFetchedReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := newTestCache(server.URL, time.Hour)
	list := cache.Get(context.Background())
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPriceForMonth(t *testing.T) {
	assert.Equal(t, 95.0, PriceForMonth("2024-01"))
	assert.Equal(t, 185.0, PriceForMonth("2024-03"))
	assert.Equal(t, 0.0, PriceForMonth("2019-01"))
}

func TestPriceHistoryCoverage(t *testing.T) {
	assert.Positive(t, PriceForMonth("2021-01"))
	assert.Positive(t, PriceForMonth("2026-02"))
	for month, price := range solPriceHistory {
		assert.Positive(t, price, "month %s", month)
	}
}

func TestMarketEventKeys(t *testing.T) {
	monthRe := regexp.MustCompile(`^\d{4}-\d{2}$`)
	for _, month := range EventMonths() {
		assert.Regexp(t, monthRe, month)
		ev, ok := EventForMonth(month)
		require.True(t, ok)
		assert.NotEmpty(t, ev.Event)
		assert.NotEmpty(t, ev.Sentiment)
	}
}

func TestEventForMonth_CrashEvent(t *testing.T) {
	ev, ok := EventForMonth("2022-11")
	require.True(t, ok)
	assert.Contains(t, ev.Event, "FTX")
}

func TestJoinedRoast(t *testing.T) {
	ev, ok := EventForMonth("2021-11")
	require.True(t, ok)
	assert.Equal(t, "Bought the absolute top", JoinedRoast(ev.Sentiment))

	assert.NotEmpty(t, JoinedRoast("no-such-sentiment"))
}
