package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars unsets every variable Load reads.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"TRIAGE_ENV", "TRIAGE_LOG_LEVEL", "TRIAGE_LOG_FORMAT",
		"TRIAGE_WEIGHT_STORE", "TRIAGE_WEIGHTS_PATH", "TRIAGE_SQLITE_PATH",
		"DATABASE_URL", "REDIS_URL", "TRIAGE_REDIS_KEY",
		"TRIAGE_BREAKER_FAILURES", "TRIAGE_BREAKER_TIMEOUT", "RABBITMQ_URL",
		"TRIAGE_DEFAULT_STRATEGY", "TRIAGE_SUGGEST_LIMIT", "TRIAGE_HOLIDAYS",
		"TRIAGE_HTTP_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
	} {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreFile, cfg.WeightStore)
	assert.Equal(t, "scoring_config.json", cfg.WeightsPath)
	assert.Equal(t, "triage:weights", cfg.RedisKey)
	assert.Equal(t, uint32(3), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, "", cfg.RabbitMQURL)
	assert.Equal(t, "smart_balance", cfg.DefaultStrategy)
	assert.Equal(t, 3, cfg.SuggestLimit)
	assert.Equal(t, domain.DefaultHolidays, cfg.Holidays)
	cfg.Holidays[0] = "2030-01-01"
	assert.NotEqual(t, "2030-01-01", domain.DefaultHolidays[0])
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "0.0.0.0:8082", cfg.MCPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnvVars(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRIAGE_ENV", "production")
	t.Setenv("TRIAGE_WEIGHT_STORE", "Redis")
	t.Setenv("TRIAGE_BREAKER_TIMEOUT", "5s")
	t.Setenv("TRIAGE_SUGGEST_LIMIT", "5")
	t.Setenv("TRIAGE_HOLIDAYS", "2026-12-25, ,2026-12-26")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoreRedis, cfg.WeightStore)
	assert.Equal(t, 5*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, 5, cfg.SuggestLimit)
	assert.Equal(t, []string{"2026-12-25", "2026-12-26"}, cfg.Holidays)
}

func TestLoad_EmptyHolidayList(t *testing.T) {
	clearEnvVars(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRIAGE_HOLIDAYS", "-")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Holidays)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnvVars(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRIAGE_BREAKER_FAILURES", "many")
	t.Setenv("TRIAGE_BREAKER_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"TRIAGE_WEIGHT_STORE": "etcd"}},
		{"postgres without url", map[string]string{"TRIAGE_WEIGHT_STORE": "postgres"}},
		{"non-positive suggest limit", map[string]string{"TRIAGE_SUGGEST_LIMIT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.env")
	require.NoError(t, os.WriteFile(path, []byte("TRIAGE_WEIGHT_STORE=memory\nTRIAGE_SUGGEST_LIMIT=7\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TRIAGE_WEIGHT_STORE")
		os.Unsetenv("TRIAGE_SUGGEST_LIMIT")
	})

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.WeightStore)
	assert.Equal(t, 7, cfg.SuggestLimit)

	_, err = LoadFile(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}
