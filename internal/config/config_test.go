package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AIDETECT_ENDPOINT", "AIDETECT_RETRY_INTERVAL", "SERVER_PORT", "SERVER_API_KEY",
		"QDRANT_HOST", "QDRANT_PORT", "NUM_WORKERS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.RetryInterval)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.False(t, cfg.HistoryEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aidetect.yaml")

	cfg := DefaultConfig()
	cfg.Endpoint = "http://localhost:9000"
	cfg.RetryInterval = 250 * time.Millisecond
	cfg.Qdrant.Host = "qdrant"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", loaded.Endpoint)
	assert.Equal(t, 250*time.Millisecond, loaded.RetryInterval)
	assert.True(t, loaded.HistoryEnabled())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AIDETECT_ENDPOINT", "http://model:8000")
	t.Setenv("AIDETECT_RETRY_INTERVAL", "2s")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("QDRANT_PORT", "not-a-number")
	t.Setenv("NUM_WORKERS", "8")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "http://model:8000", cfg.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6334, cfg.Qdrant.Port, "unparseable values keep the default")
	assert.Equal(t, 8, cfg.Batch.Workers)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative endpoint", func(c *Config) { c.Endpoint = "localhost" }},
		{"zero retry", func(c *Config) { c.RetryInterval = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
