package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brojonat/solroast/service/metrics"
)

const (
	transactionsTimeout = 20 * time.Second
	balancesTimeout     = 15 * time.Second
	throttleRetryDelay  = 2 * time.Second
)

// PageSize is the page size requested from the transactions endpoint.
// Callers treat a page shorter than this as the end of history.
const PageSize = 100

// Client calls the Helius v0 REST API. The zero API key client returns
// ErrNotConfigured from every method so callers can branch on it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Helius client. An empty apiKey produces a client
// whose methods return ErrNotConfigured.
func NewClient(baseURL, apiKey string, logger *slog.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
		logger:  logger,
		metrics: m,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// get performs a GET with a single fixed-delay retry on 429. The
// response body is returned for the caller to decode.
func (c *Client) get(ctx context.Context, method, rawURL string, timeout time.Duration) ([]byte, error) {
	start := time.Now()

	body, status, err := c.doGet(ctx, rawURL, timeout)
	if err != nil {
		c.metrics.RecordProviderCall("helius", method, "error", time.Since(start).Seconds())
		return nil, err
	}
	if status == http.StatusTooManyRequests {
		c.metrics.RecordRateLimitHit("helius")
		c.metrics.RecordProviderRetry("helius", "throttle")
		c.logger.Warn("helius throttled, retrying once", "method", method, "delay", throttleRetryDelay)
		if serr := c.sleep(ctx, throttleRetryDelay); serr != nil {
			return nil, serr
		}
		body, status, err = c.doGet(ctx, rawURL, timeout)
		if err != nil {
			c.metrics.RecordProviderCall("helius", method, "error", time.Since(start).Seconds())
			return nil, err
		}
		if status == http.StatusTooManyRequests {
			c.metrics.RecordProviderCall("helius", method, "throttled", time.Since(start).Seconds())
			return nil, fmt.Errorf("%s: %w", method, ErrThrottled)
		}
	}
	if status != http.StatusOK {
		c.metrics.RecordProviderCall("helius", method, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("helius %s returned status %d", method, status)
	}
	c.metrics.RecordProviderCall("helius", method, "ok", time.Since(start).Seconds())
	return body, nil
}

func (c *Client) doGet(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Transactions fetches one page of enhanced transactions for a wallet,
// newest first. A non-empty before cursor pages further back.
func (c *Client) Transactions(ctx context.Context, wallet, before string) ([]Transaction, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("limit", strconv.Itoa(PageSize))
	if before != "" {
		q.Set("before", before)
	}
	rawURL := fmt.Sprintf("%s/v0/addresses/%s/transactions?%s", c.baseURL, wallet, q.Encode())

	body, err := c.get(ctx, "transactions", rawURL, transactionsTimeout)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode helius transactions: %w", err)
	}
	return txs, nil
}

// GetBalances fetches the wallet's native and token balances.
func (c *Client) GetBalances(ctx context.Context, wallet string) (*Balances, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("api-key", c.apiKey)
	rawURL := fmt.Sprintf("%s/v0/addresses/%s/balances?%s", c.baseURL, wallet, q.Encode())

	body, err := c.get(ctx, "balances", rawURL, balancesTimeout)
	if err != nil {
		return nil, err
	}

	var balances Balances
	if err := json.Unmarshal(body, &balances); err != nil {
		return nil, fmt.Errorf("failed to decode helius balances: %w", err)
	}
	return &balances, nil
}
