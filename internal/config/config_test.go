package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.LogLevel = "loud"
	cfg.Analysis.Budget = -1
	cfg.Server.Port = 99999

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "budget must be > 0")
	assert.Contains(t, err.Error(), "port must be 1-65535")
}

func TestValidatePairedCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.DMarket.ApiKey = "key-without-secret"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key and api_secret must be set together")

	cfg.DMarket.ApiSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTelegramPair(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramChatID = "12345"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram_token and telegram_chat_id")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "analyze"
log_level = "debug"

[analysis]
budget = 250.0
interval = "90s"

[server]
port = 9090
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "analyze", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 250.0, cfg.Analysis.Budget, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Analysis.Interval.Duration)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://api.dmarket.com", cfg.DMarket.BaseURL)
	assert.Equal(t, []string{"a8db"}, cfg.Markets.Games)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKINARB_DMARKET_API_KEY", "env-key")
	t.Setenv("SKINARB_ANALYSIS_BUDGET", "777.5")
	t.Setenv("SKINARB_MARKETS_GAMES", "a8db, 9a92")
	t.Setenv("SKINARB_REDIS_ENABLED", "true")
	t.Setenv("SKINARB_ANALYSIS_INTERVAL", "2m")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "env-key", cfg.DMarket.ApiKey)
	assert.InDelta(t, 777.5, cfg.Analysis.Budget, 1e-9)
	assert.Equal(t, []string{"a8db", "9a92"}, cfg.Markets.Games)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.Interval.Duration)
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SKINARB_ANALYSIS_BUDGET", "not-a-number")
	t.Setenv("SKINARB_SERVER_PORT", "also-not")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.InDelta(t, Defaults().Analysis.Budget, cfg.Analysis.Budget, 1e-9)
	assert.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}
