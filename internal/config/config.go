// Package config defines the top-level configuration for the arbitrage
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SKINARB_* environment
// variables.
type Config struct {
	DMarket   DMarketConfig   `toml:"dmarket"`
	Markets   MarketsConfig   `toml:"markets"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Allocator AllocatorConfig `toml:"allocator"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// DMarketConfig holds DMarket API credentials and endpoint.
type DMarketConfig struct {
	BaseURL   string `toml:"base_url"`
	ApiKey    string `toml:"api_key"`
	ApiSecret string `toml:"api_secret"`
}

// MarketsConfig selects the game catalogs to scan and the secondary venues
// used for cross-marketplace comparison.
type MarketsConfig struct {
	Games     []string          `toml:"games"`
	Secondary map[string]string `toml:"secondary"` // venue name -> base URL
}

// AnalysisConfig holds the scan-loop parameters.
type AnalysisConfig struct {
	Budget       float64  `toml:"budget"`
	MinProfit    float64  `toml:"min_profit"`
	MinLiquidity float64  `toml:"min_liquidity"`
	MaxItems     int      `toml:"max_items"`
	Fee          float64  `toml:"fee"`
	Interval     duration `toml:"interval"`
	CacheTTL     duration `toml:"cache_ttl"`
}

// AllocatorConfig holds the budget-allocation constraints.
type AllocatorConfig struct {
	MaxRisk             float64 `toml:"max_risk"`
	MinAllocation       float64 `toml:"min_allocation"`
	MaxAllocationPerCyc float64 `toml:"max_allocation_per_cycle"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. When disabled, the engine
// falls back to an in-process cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for run-report
// archival.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken  string   `toml:"telegram_token"`
	TelegramChatID string   `toml:"telegram_chat_id"`
	Events         []string `toml:"events"`
}

// duration wraps time.Duration so the TOML decoder can parse strings like
// "5m" or "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		DMarket: DMarketConfig{
			BaseURL: "https://api.dmarket.com",
		},
		Markets: MarketsConfig{
			Games:     []string{"a8db"},
			Secondary: map[string]string{},
		},
		Analysis: AnalysisConfig{
			Budget:       100.0,
			MinProfit:    1.0,
			MinLiquidity: 0.5,
			MaxItems:     50,
			Fee:          0.05,
			Interval:     duration{5 * time.Minute},
			CacheTTL:     duration{5 * time.Minute},
		},
		Allocator: AllocatorConfig{
			MaxRisk:             70.0,
			MinAllocation:       1.0,
			MaxAllocationPerCyc: 0, // unlimited
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "skinarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "skinarb-reports",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunities", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"analyze": true,
	"serve":   true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: analyze, serve, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// DMarket — credentials are optional (public market data works without
	// them), but they must be set together.
	dk := c.DMarket.ApiKey != ""
	ds := c.DMarket.ApiSecret != ""
	if dk != ds {
		errs = append(errs, "dmarket: api_key and api_secret must be set together")
	}
	if c.DMarket.BaseURL == "" {
		errs = append(errs, "dmarket: base_url must not be empty")
	}

	if len(c.Markets.Games) == 0 {
		errs = append(errs, "markets: at least one game must be configured")
	}

	// Analysis
	if c.Analysis.Budget <= 0 {
		errs = append(errs, "analysis: budget must be > 0")
	}
	if c.Analysis.MaxItems < 2 {
		errs = append(errs, "analysis: max_items must be >= 2")
	}
	if c.Analysis.Fee < 0 || c.Analysis.Fee >= 1 {
		errs = append(errs, fmt.Sprintf("analysis: fee must be in [0, 1), got %g", c.Analysis.Fee))
	}
	if c.Analysis.Interval.Duration <= 0 {
		errs = append(errs, "analysis: interval must be positive")
	}

	// Allocator
	if c.Allocator.MaxRisk < 0 || c.Allocator.MaxRisk > 100 {
		errs = append(errs, fmt.Sprintf("allocator: max_risk must be in [0, 100], got %g", c.Allocator.MaxRisk))
	}
	if c.Allocator.MinAllocation < 0 {
		errs = append(errs, "allocator: min_allocation must be >= 0")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify — both Telegram fields set together, or neither.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
