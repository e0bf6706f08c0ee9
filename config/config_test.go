package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credlib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Engine.TimestepsPerYear)
	assert.Equal(t, 5, cfg.Engine.MinTimesteps)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  pretty: true
engine:
  timesteps_per_year: 52
journal:
  enabled: true
  path: /tmp/runs.db
server:
  addr: 127.0.0.1:9000
  read_timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 52, cfg.Engine.TimestepsPerYear)
	assert.Equal(t, 5, cfg.Engine.MinTimesteps)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/runs.db", cfg.Journal.Path)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: :9000\n")
	t.Setenv("CREDLIB_SERVER_ADDR", ":7000")
	t.Setenv("CREDLIB_BATCH_WORKERS", "16")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 16, cfg.Batch.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"engine":  "engine:\n  min_timesteps: 0\n",
		"workers": "batch:\n  workers: 0\n",
		"journal": "journal:\n  enabled: true\n  path: \"\"\n",
		"rate":    "server:\n  requests_per_second: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
