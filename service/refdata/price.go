package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brojonat/solroast/service/metrics"
)

const (
	priceTimeout = 10 * time.Second

	solMintAddress = "So11111111111111111111111111111111111111112"
)

// PriceClient fetches the current SOL/USD price from the Jupiter price
// API. A fetch failure is reported as an error; the caller degrades to
// a zero price rather than failing the analysis.
type PriceClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewPriceClient creates a price client against baseURL (the Jupiter
// price v2 endpoint).
func NewPriceClient(baseURL string, logger *slog.Logger, m *metrics.Metrics) *PriceClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceClient{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
		metrics: m,
	}
}

// CurrentSOLPrice returns the latest SOL/USD price.
func (c *PriceClient) CurrentSOLPrice(ctx context.Context) (float64, error) {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, priceTimeout)
	defer cancel()

	url := fmt.Sprintf("%s?ids=%s", c.baseURL, solMintAddress)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordProviderCall("jupiter_price", "get", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordProviderCall("jupiter_price", "get", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("price endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read price response: %w", err)
	}

	// The v2 response quotes prices as strings.
	var payload struct {
		Data map[string]struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}
	entry, ok := payload.Data[solMintAddress]
	if !ok {
		return 0, fmt.Errorf("price response missing SOL entry")
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q: %w", entry.Price, err)
	}
	c.metrics.RecordProviderCall("jupiter_price", "get", "ok", time.Since(start).Seconds())
	return price, nil
}
