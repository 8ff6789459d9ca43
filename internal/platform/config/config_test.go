package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("PET_SERVICE_URL", "http://pets:5002/")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")

	cfg, err := Load(Config{Port: "5003", ServiceName: "appointment-service"})
	require.NoError(t, err)

	assert.Equal(t, ":5003", cfg.Addr())
	assert.Equal(t, "appointment-service", cfg.ServiceName)
	assert.Equal(t, "http://pets:5002", cfg.PetServiceURL)
	assert.Equal(t, "http://localhost:5001", cfg.UserServiceURL)
	assert.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CredentialTTL)
	assert.Equal(t, 10, cfg.LoginBurst)
	assert.Empty(t, cfg.TrustedProxyList())
}

func TestTrustedProxyList(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.5, ,172.16.0.0/12 ")

	cfg, err := Load(Config{Port: "5001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5", "172.16.0.0/12"}, cfg.TrustedProxyList())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVICE_NAME=from-file\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("SERVICE_NAME", "")
	require.NoError(t, os.Unsetenv("SERVICE_NAME"))

	cfg, err := Load(Config{ServiceName: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ServiceName)
}
