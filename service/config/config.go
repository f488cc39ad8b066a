package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Database configuration
	DatabaseURL string

	// NATS configuration
	NATSURL string

	// Solana JSON-RPC endpoint
	SolanaRPCURL string

	// Helius enhanced-history provider. An empty key disables the enhanced
	// path entirely; the analyzer falls back to raw RPC sampling.
	HeliusAPIKey  string
	HeliusBaseURL string

	// Jupiter price API
	PriceAPIURL string

	// Token list source
	TokenListURL string
	TokenListTTL time.Duration

	// Anthropic API key for roast generation
	AnthropicAPIKey string

	// Temporal configuration
	TemporalHost      string
	TemporalNamespace string
	TemporalTaskQueue string

	// Analysis tuning
	AnalysisTimeout    time.Duration
	SignaturePageLimit int // page size for signature pagination
	MaxSignaturePages  int // safety bound on raw signature pagination
	MaxHistoryPages    int // safety bound on enhanced-history pagination
	MaxSampledBodies   int // cap on raw-path transaction body fetches
	AnalysisCacheTTL   time.Duration
	RoastRateLimit     int // roasts per IP per hour
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error
	var err error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required"))
	}

	cfg.NATSURL = getEnvOrDefault("NATS_URL", "nats://localhost:4222")

	cfg.SolanaRPCURL = getEnvOrDefault("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")

	// Helius is optional: no key means only the raw RPC fallback path runs.
	cfg.HeliusAPIKey = os.Getenv("HELIUS_API_KEY")
	cfg.HeliusBaseURL = getEnvOrDefault("HELIUS_BASE_URL", "https://api.helius.xyz")

	cfg.PriceAPIURL = getEnvOrDefault("PRICE_API_URL", "https://api.jup.ag/price/v2")
	cfg.TokenListURL = getEnvOrDefault("TOKEN_LIST_URL", "https://token.jup.ag/strict")

	cfg.TokenListTTL, err = parseDuration("TOKEN_LIST_TTL", "6h")
	if err != nil {
		errs = append(errs, err)
	}

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	cfg.TemporalHost = getEnvOrDefault("TEMPORAL_HOST", "localhost:7233")
	cfg.TemporalNamespace = getEnvOrDefault("TEMPORAL_NAMESPACE", "default")
	cfg.TemporalTaskQueue = getEnvOrDefault("TEMPORAL_TASK_QUEUE", "solroast-analysis-refresh")

	cfg.AnalysisTimeout, err = parseDuration("ANALYSIS_TIMEOUT", "90s")
	if err != nil {
		errs = append(errs, err)
	}

	cfg.AnalysisCacheTTL, err = parseDuration("ANALYSIS_CACHE_TTL", "24h")
	if err != nil {
		errs = append(errs, err)
	}

	cfg.SignaturePageLimit, err = parseInt("SIGNATURE_PAGE_LIMIT", 1000)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.MaxSignaturePages, err = parseInt("MAX_SIGNATURE_PAGES", 5)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.MaxHistoryPages, err = parseInt("MAX_HISTORY_PAGES", 10)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.MaxSampledBodies, err = parseInt("MAX_SAMPLED_BODIES", 30)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.RoastRateLimit, err = parseInt("ROAST_RATE_LIMIT", 10)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DatabaseURL is required"))
	}

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.TemporalHost == "" {
		errs = append(errs, fmt.Errorf("TemporalHost is required"))
	}

	if c.TemporalNamespace == "" {
		errs = append(errs, fmt.Errorf("TemporalNamespace is required"))
	}

	if c.TemporalTaskQueue == "" {
		errs = append(errs, fmt.Errorf("TemporalTaskQueue is required"))
	}

	if c.AnalysisTimeout < time.Second {
		errs = append(errs, fmt.Errorf("AnalysisTimeout must be at least 1 second"))
	}

	if c.SignaturePageLimit <= 0 || c.SignaturePageLimit > 1000 {
		errs = append(errs, fmt.Errorf("SignaturePageLimit must be in (0, 1000]"))
	}

	if c.MaxSampledBodies <= 0 {
		errs = append(errs, fmt.Errorf("MaxSampledBodies must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// HeliusEnabled reports whether the enhanced-history provider is configured.
func (c *Config) HeliusEnabled() bool {
	return c.HeliusAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
