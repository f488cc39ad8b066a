package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddr:         ":8080",
		LogLevel:           "info",
		DatabaseURL:        "postgres://localhost:5432/solroast",
		NATSURL:            "nats://localhost:4222",
		SolanaRPCURL:       "https://api.mainnet-beta.solana.com",
		HeliusBaseURL:      "https://api.helius.xyz",
		TemporalHost:       "localhost:7233",
		TemporalNamespace:  "default",
		TemporalTaskQueue:  "solroast-analysis-refresh",
		AnalysisTimeout:    90 * time.Second,
		SignaturePageLimit: 1000,
		MaxSignaturePages:  5,
		MaxHistoryPages:    10,
		MaxSampledBodies:   30,
		AnalysisCacheTTL:   24 * time.Hour,
		RoastRateLimit:     10,
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_MissingRPCURL(t *testing.T) {
	cfg := validConfig()
	cfg.SolanaRPCURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SolanaRPCURL")
}

func TestValidate_PageLimitBounds(t *testing.T) {
	cfg := validConfig()
	cfg.SignaturePageLimit = 2000
	require.Error(t, cfg.Validate())

	cfg.SignaturePageLimit = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_SampledBodies(t *testing.T) {
	cfg := validConfig()
	cfg.MaxSampledBodies = 0
	require.Error(t, cfg.Validate())
}

func TestHeliusEnabled(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.HeliusEnabled())

	cfg.HeliusAPIKey = "test-key"
	assert.True(t, cfg.HeliusEnabled())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/solroast")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.SolanaRPCURL)
	assert.Equal(t, 1000, cfg.SignaturePageLimit)
	assert.Equal(t, 30, cfg.MaxSampledBodies)
	assert.Equal(t, 24*time.Hour, cfg.AnalysisCacheTTL)
	assert.False(t, cfg.HeliusEnabled())
}
