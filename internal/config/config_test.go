package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BILANCIO_API_URL", "")
	t.Setenv("BILANCIO_TIMEOUT", "")
	t.Setenv("BILANCIO_LOG_LEVEL", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.SessionDBPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BILANCIO_API_URL", "https://tracker.example.com/api")
	t.Setenv("BILANCIO_TIMEOUT", "30s")
	t.Setenv("BILANCIO_DB_PATH", "/tmp/bilancio-test/session.db")
	t.Setenv("BILANCIO_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "https://tracker.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/bilancio-test/session.db", cfg.SessionDBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("BILANCIO_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		return &Config{
			APIBaseURL:     "http://localhost:8080/api",
			RequestTimeout: 15 * time.Second,
			SessionDBPath:  filepath.Join(t.TempDir(), "session.db"),
			LogLevel:       "info",
		}
	}

	t.Run("valid config", func(t *testing.T) {
		require.NoError(t, valid(t).Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad URL scheme",
			mutate:  func(c *Config) { c.APIBaseURL = "ftp://example.com/api" },
			wantErr: "invalid API base URL scheme",
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.APIBaseURL = "http://" },
			wantErr: "missing host",
		},
		{
			name:    "timeout too short",
			mutate:  func(c *Config) { c.RequestTimeout = 100 * time.Millisecond },
			wantErr: "must be at least 1 second",
		},
		{
			name:    "timeout too long",
			mutate:  func(c *Config) { c.RequestTimeout = time.Hour },
			wantErr: "must be at most 5 minutes",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.SessionDBPath = "" },
			wantErr: "session database path cannot be empty",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreatesSessionDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "bilancio")
	cfg := &Config{
		APIBaseURL:     "http://localhost:8080/api",
		RequestTimeout: 15 * time.Second,
		SessionDBPath:  filepath.Join(dir, "session.db"),
		LogLevel:       "info",
	}

	require.NoError(t, cfg.Validate())
	assert.DirExists(t, dir)
}
