package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SKINARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SKINARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── DMarket ──
	setStr(&cfg.DMarket.BaseURL, "SKINARB_DMARKET_BASE_URL")
	setStr(&cfg.DMarket.ApiKey, "SKINARB_DMARKET_API_KEY")
	setStr(&cfg.DMarket.ApiSecret, "SKINARB_DMARKET_API_SECRET")

	// ── Markets ──
	setStringSlice(&cfg.Markets.Games, "SKINARB_MARKETS_GAMES")

	// ── Analysis ──
	setFloat64(&cfg.Analysis.Budget, "SKINARB_ANALYSIS_BUDGET")
	setFloat64(&cfg.Analysis.MinProfit, "SKINARB_ANALYSIS_MIN_PROFIT")
	setFloat64(&cfg.Analysis.MinLiquidity, "SKINARB_ANALYSIS_MIN_LIQUIDITY")
	setInt(&cfg.Analysis.MaxItems, "SKINARB_ANALYSIS_MAX_ITEMS")
	setFloat64(&cfg.Analysis.Fee, "SKINARB_ANALYSIS_FEE")
	setDuration(&cfg.Analysis.Interval, "SKINARB_ANALYSIS_INTERVAL")
	setDuration(&cfg.Analysis.CacheTTL, "SKINARB_ANALYSIS_CACHE_TTL")

	// ── Allocator ──
	setFloat64(&cfg.Allocator.MaxRisk, "SKINARB_ALLOCATOR_MAX_RISK")
	setFloat64(&cfg.Allocator.MinAllocation, "SKINARB_ALLOCATOR_MIN_ALLOCATION")
	setFloat64(&cfg.Allocator.MaxAllocationPerCyc, "SKINARB_ALLOCATOR_MAX_ALLOCATION_PER_CYCLE")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SKINARB_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SKINARB_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SKINARB_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SKINARB_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SKINARB_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SKINARB_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SKINARB_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SKINARB_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SKINARB_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SKINARB_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SKINARB_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SKINARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SKINARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SKINARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SKINARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SKINARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SKINARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SKINARB_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SKINARB_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SKINARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SKINARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "SKINARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SKINARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SKINARB_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "SKINARB_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SKINARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SKINARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SKINARB_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SKINARB_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SKINARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SKINARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "SKINARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SKINARB_MODE")
	setStr(&cfg.LogLevel, "SKINARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
