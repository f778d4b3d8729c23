package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: 5000
  env: production
database:
  url: postgres://file/db
jwt:
  secret: from-file
lifecycle:
  strict_finalize: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("PORT", "4100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, 4100, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.True(t, cfg.Lifecycle.StrictFinalize)
	assert.False(t, cfg.Lifecycle.TutorCancelRequiresOwnership)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Zero(t, cfg.SlotExpiryEvery())
}

func TestLoad_MissingSecretInProduction(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_PORT", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_DevelopmentSecretFallback(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "postgres://x"

	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestDefault_SlotExpiryWorkerOff(t *testing.T) {
	cfg := Default()
	assert.Zero(t, cfg.Workers.SlotExpiryInterval)
	assert.Zero(t, cfg.SlotExpiryEvery())
}

func TestLoad_ReturnsIndependentConfigs(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_PORT", "4200")

	first, err := Load()
	require.NoError(t, err)

	t.Setenv("SERVER_PORT", "4300")
	second, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4200, first.Server.Port)
	assert.Equal(t, 4300, second.Server.Port)
	assert.NotSame(t, first, second)
}
