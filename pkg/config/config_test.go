package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, []string{"pdf", "docx", "txt"}, cfg.Content.AllowedExtensions)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Dashboard.APIHost)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_EXPIRATION", "5m")
	t.Setenv("CONTENT_ALLOWED_EXTENSIONS", " pdf , txt ,")
	t.Setenv("DASHBOARD_API_HOST", "http://api.local/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, []string{"pdf", "txt"}, cfg.Content.AllowedExtensions)
	assert.Equal(t, "http://api.local", cfg.Dashboard.APIHost)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
