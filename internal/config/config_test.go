package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret: test-secret\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 3, cfg.Scheduler.BatchSize)
	require.Equal(t, 3, cfg.Fetch.MaxRetries)
	require.Equal(t, "UAH", cfg.Harvest.DefaultCurrency)
	require.Equal(t, "memory", cfg.Storage.Provider)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.secret")
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret: test-secret
scheduler:
  batch_size: 5
  pacing_ms: 100
fetch:
  max_retries: 2
storage:
  provider: gcs
  gcs_bucket: harvest-snapshots
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Scheduler.BatchSize)
	require.Equal(t, 2, cfg.Fetch.MaxRetries)
	require.Equal(t, "harvest-snapshots", cfg.Storage.GCSBucket)
}

func TestValidateGCSNeedsBucket(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret: test-secret
storage:
  provider: gcs
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "gcs_bucket")
}
