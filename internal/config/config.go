// Package config loads hunter configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete hunter configuration.
type Config struct {
	Birdeye   ProviderConfig `yaml:"birdeye"`
	Social    SocialConfig   `yaml:"social"`
	Hunt      HuntConfig     `yaml:"hunt"`
	Filters   FiltersConfig  `yaml:"filters"`
	Storage   StorageConfig  `yaml:"storage"`
	Cache     CacheConfig    `yaml:"cache"`
	Server    ServerConfig   `yaml:"server"`
	LogLevel  string         `yaml:"log_level"`
	LogFormat string         `yaml:"log_format"`
}

// ProviderConfig configures the market/security data provider.
type ProviderConfig struct {
	BaseURL            string        `yaml:"base_url"`
	APIKey             string        `yaml:"api_key"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	PageSize           int           `yaml:"page_size"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries"`
}

// SocialConfig configures the social feed provider.
type SocialConfig struct {
	BaseURL            string        `yaml:"base_url"`
	BearerToken        string        `yaml:"bearer_token"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	MaxResults         int           `yaml:"max_results"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries"`
}

// HuntConfig configures one pipeline pass and the hunt loop.
type HuntConfig struct {
	Chains          []string `yaml:"chains"`
	MaxConcurrent   int      `yaml:"max_concurrent"`
	ScoreThreshold  float64  `yaml:"score_threshold"`
	TopN            int      `yaml:"top_n"`
	IntervalMinutes int      `yaml:"interval_minutes"`
}

// FilterConfig holds eligibility floors for discovered tokens.
type FilterConfig struct {
	MinLiquidity    float64 `yaml:"min_liquidity"`
	MinVolume24h    float64 `yaml:"min_volume_24h"`
	MaxAgeHours     float64 `yaml:"max_age_hours"`
	MaxSymbolLength int     `yaml:"max_symbol_length"`
}

// FiltersConfig holds the default floors and per-chain overrides.
type FiltersConfig struct {
	Default FilterConfig            `yaml:"default"`
	Chains  map[string]FilterConfig `yaml:"chains"`
}

// ForChain returns the chain override when present, otherwise the default.
func (f FiltersConfig) ForChain(chain string) FilterConfig {
	if fc, ok := f.Chains[strings.ToLower(chain)]; ok {
		return fc
	}
	return f.Default
}

// StorageConfig selects the persistent store.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// CacheConfig configures the provider response cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// ServerConfig configures the status API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Default returns a complete working configuration.
func Default() *Config {
	return &Config{
		Birdeye: ProviderConfig{
			BaseURL:            "https://public-api.birdeye.so",
			RateLimitPerMinute: 60,
			PageSize:           50,
			Timeout:            15 * time.Second,
			MaxRetries:         2,
		},
		Social: SocialConfig{
			BaseURL:            "https://api.twitter.com",
			RateLimitPerMinute: 60,
			MaxResults:         100,
			Timeout:            15 * time.Second,
			MaxRetries:         1,
		},
		Hunt: HuntConfig{
			Chains:          []string{"solana", "base"},
			MaxConcurrent:   15,
			ScoreThreshold:  40,
			TopN:            10,
			IntervalMinutes: 5,
		},
		Filters: FiltersConfig{
			Default: FilterConfig{
				MinLiquidity:    50000,
				MinVolume24h:    100000,
				MaxAgeHours:     24,
				MaxSymbolLength: 10,
			},
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "memecoins.db",
		},
		Cache: CacheConfig{
			TTL: 120 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":9090",
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load builds a config from defaults, the YAML file at path (optional) and the environment.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Birdeye.APIKey, "BIRDEYE_API_KEY")
	setFromEnv(&c.Social.BearerToken, "TWITTER_BEARER_TOKEN")
	setFromEnv(&c.Storage.PostgresDSN, "POSTGRES_DSN")
	setFromEnv(&c.Storage.ClickhouseDSN, "CLICKHOUSE_DSN")
	setFromEnv(&c.Cache.RedisAddr, "REDIS_ADDR")
	setFromEnv(&c.Storage.SQLitePath, "HUNTER_DB_PATH")
	setFromEnv(&c.LogLevel, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Birdeye.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("birdeye.rate_limit_per_minute must be positive"))
	}
	if c.Birdeye.PageSize <= 0 {
		errs = append(errs, errors.New("birdeye.page_size must be positive"))
	}
	if c.Birdeye.MaxRetries < 0 || c.Social.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must not be negative"))
	}
	if c.Social.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("social.rate_limit_per_minute must be positive"))
	}
	if c.Social.MaxResults <= 0 {
		errs = append(errs, errors.New("social.max_results must be positive"))
	}
	if len(c.Hunt.Chains) == 0 {
		errs = append(errs, errors.New("hunt.chains must not be empty"))
	}
	if c.Hunt.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("hunt.max_concurrent must be positive"))
	}
	if c.Hunt.ScoreThreshold < 0 || c.Hunt.ScoreThreshold > 100 {
		errs = append(errs, errors.New("hunt.score_threshold must be in [0,100]"))
	}
	if c.Hunt.TopN <= 0 {
		errs = append(errs, errors.New("hunt.top_n must be positive"))
	}
	if c.Hunt.IntervalMinutes <= 0 {
		errs = append(errs, errors.New("hunt.interval_minutes must be positive"))
	}

	errs = append(errs, c.Filters.Default.validate("filters.default")...)
	for chain, fc := range c.Filters.Chains {
		errs = append(errs, fc.validate("filters.chains."+chain)...)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}

	return errors.Join(errs...)
}

func (f FilterConfig) validate(prefix string) []error {
	var errs []error
	if f.MinLiquidity < 0 {
		errs = append(errs, fmt.Errorf("%s.min_liquidity must not be negative", prefix))
	}
	if f.MinVolume24h < 0 {
		errs = append(errs, fmt.Errorf("%s.min_volume_24h must not be negative", prefix))
	}
	if f.MaxAgeHours < 0 {
		errs = append(errs, fmt.Errorf("%s.max_age_hours must not be negative", prefix))
	}
	if f.MaxSymbolLength < 0 {
		errs = append(errs, fmt.Errorf("%s.max_symbol_length must not be negative", prefix))
	}
	return errs
}

// Interval returns the hunt loop interval.
func (h HuntConfig) Interval() time.Duration {
	return time.Duration(h.IntervalMinutes) * time.Minute
}
