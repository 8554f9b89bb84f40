package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	env := "API_BASE_URL=http://backend:5000/api\nJWT_SECRET=s3cret\nAPI_TIMEOUT=3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:5000/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.OrdersPageSize)
	assert.Equal(t, "inr", cfg.StripeCurrency)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_BASE_URL=http://file/api\nJWT_SECRET=x\n"), 0o600))
	t.Setenv("API_BASE_URL", "http://env/api")
	t.Setenv("ORDERS_PAGE_SIZE", "25")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://env/api", cfg.APIBaseURL)
	assert.Equal(t, 25, cfg.OrdersPageSize)
}

func TestMissingFileUsesEnvironmentAndValidates(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "API_BASE_URL")

	t.Setenv("API_BASE_URL", "http://env/api")
	t.Setenv("SESSION_TTL", "0s")
	_, err = LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "SESSION_TTL")
}
