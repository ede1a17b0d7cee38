package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60, cfg.Birdeye.RateLimitPerMinute)
	assert.Equal(t, 15, cfg.Hunt.MaxConcurrent)
	assert.Equal(t, 40.0, cfg.Hunt.ScoreThreshold)
	assert.Equal(t, 10, cfg.Hunt.TopN)
	assert.Equal(t, 5*time.Minute, cfg.Hunt.Interval())
	assert.Equal(t, 50000.0, cfg.Filters.Default.MinLiquidity)
	assert.Equal(t, 120*time.Second, cfg.Cache.TTL)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunter.yaml")
	content := `
hunt:
  chains: [solana]
  top_n: 5
filters:
  chains:
    solana:
      min_liquidity: 10000
      min_volume_24h: 20000
      max_age_hours: 6
      max_symbol_length: 8
cache:
  ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"solana"}, cfg.Hunt.Chains)
	assert.Equal(t, 5, cfg.Hunt.TopN)
	assert.Equal(t, 15, cfg.Hunt.MaxConcurrent, "untouched keys keep defaults")
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)

	sol := cfg.Filters.ForChain("solana")
	assert.Equal(t, 10000.0, sol.MinLiquidity)
	assert.Equal(t, 8, sol.MaxSymbolLength)

	base := cfg.Filters.ForChain("base")
	assert.Equal(t, 50000.0, base.MinLiquidity)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("BIRDEYE_API_KEY", "be-key")
	t.Setenv("TWITTER_BEARER_TOKEN", "tw-token")
	t.Setenv("HUNTER_DB_PATH", "/tmp/hunter.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "be-key", cfg.Birdeye.APIKey)
	assert.Equal(t, "tw-token", cfg.Social.BearerToken)
	assert.Equal(t, "/tmp/hunter.db", cfg.Storage.SQLitePath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate limit", func(c *Config) { c.Birdeye.RateLimitPerMinute = 0 }},
		{"zero concurrency", func(c *Config) { c.Hunt.MaxConcurrent = 0 }},
		{"zero top n", func(c *Config) { c.Hunt.TopN = 0 }},
		{"zero interval", func(c *Config) { c.Hunt.IntervalMinutes = 0 }},
		{"no chains", func(c *Config) { c.Hunt.Chains = nil }},
		{"negative floor", func(c *Config) { c.Filters.Default.MinLiquidity = -1 }},
		{"negative chain floor", func(c *Config) {
			c.Filters.Chains = map[string]FilterConfig{"base": {MinVolume24h: -5}}
		}},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
