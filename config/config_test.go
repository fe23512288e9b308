package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg := FromLookup(lookupFrom(nil))

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 256, cfg.SendBuffer)
	assert.Empty(t, cfg.Warnings)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"PORT":             "8080",
		"URLS_AUTHORIZED":  "https://chat.example.com, http://localhost:5173 ,",
		"LOG_LEVEL":        "DEBUG",
		"SHUTDOWN_TIMEOUT": "5s",
		"WS_SEND_BUFFER":   "64",
	}))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"https://chat.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 64, cfg.SendBuffer)
	assert.Empty(t, cfg.Warnings)
}

func TestFromLookup_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, cfg Config)
	}{
		{"port not numeric", "PORT", "http", func(t *testing.T, cfg Config) { assert.Equal(t, DefaultPort, cfg.Port) }},
		{"port out of range", "PORT", "70000", func(t *testing.T, cfg Config) { assert.Equal(t, DefaultPort, cfg.Port) }},
		{"blank origins", "URLS_AUTHORIZED", " , ", func(t *testing.T, cfg Config) {
			assert.Equal(t, []string{DefaultAllowedOrigins}, cfg.AllowedOrigins)
		}},
		{"unknown level", "LOG_LEVEL", "verbose", func(t *testing.T, cfg Config) { assert.Equal(t, DefaultLogLevel, cfg.LogLevel) }},
		{"bad duration", "SHUTDOWN_TIMEOUT", "soon", func(t *testing.T, cfg Config) {
			assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
		}},
		{"negative duration", "SHUTDOWN_TIMEOUT", "-1s", func(t *testing.T, cfg Config) {
			assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
		}},
		{"zero buffer", "WS_SEND_BUFFER", "0", func(t *testing.T, cfg Config) { assert.Equal(t, DefaultSendBuffer, cfg.SendBuffer) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromLookup(lookupFrom(map[string]string{tt.key: tt.value}))
			tt.check(t, cfg)
			require.Len(t, cfg.Warnings, 1)
			assert.Contains(t, cfg.Warnings[0], tt.key)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WS_SEND_BUFFER=32\n"), 0o600))
	// Setenv restores the original value on cleanup; the variable must be
	// absent for godotenv to apply the file.
	t.Setenv("WS_SEND_BUFFER", "")
	require.NoError(t, os.Unsetenv("WS_SEND_BUFFER"))

	cfg := Load(path)

	assert.Equal(t, 32, cfg.SendBuffer)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9000\n"), 0o600))
	t.Setenv("PORT", "9100")

	cfg := Load(path)

	assert.Equal(t, "9100", cfg.Port)
}
