package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-advisor/internal/core"
	"triage-advisor/internal/llm"
)

var keys = []string{
	"NEBIUS_API_KEY", "NEBIUS_BASE_URL", "TRIAGE_MODEL", "TRIAGE_TIMEOUT", "PORT",
	"DATABASE_URL", "TRIAGE_NOTIFY_CHANNEL", "LOG_LEVEL", "FRONTEND_URL",
}

// clearEnv blanks every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, llm.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, core.DefaultModel, cfg.Model)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "triage_alerts", cfg.NotifyChannel)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("NEBIUS_API_KEY=from-file\nPORT=9090\nTRIAGE_TIMEOUT=15\n"), 0o600))
	t.Setenv("PORT", "7070")

	cfg, err := Load(env)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIAGE_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "TRIAGE_TIMEOUT")
}

func TestSettings(t *testing.T) {
	cfg := &Config{APIKey: "k", Model: "other/model"}
	s := cfg.Settings()
	assert.Equal(t, "k", s.APIKey)
	assert.Equal(t, "other/model", s.Model)
	assert.InDelta(t, core.DefaultTemperature, s.Temperature, 1e-6)
	assert.Equal(t, core.DefaultMaxTokens, s.MaxTokens)
}
