package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"shopee", "lazada", "tiktok"}, cfg.Signals.Platforms)
	assert.InDelta(t, 0.3, cfg.Pricing.EMAAlpha, 1e-9)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLATFORMS", " shopee , lazada ,")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"shopee", "lazada"}, cfg.Signals.Platforms)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadWithEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
}
