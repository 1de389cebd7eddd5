package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfigFile, "")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 3, cfg.Resource.Retries)
	assert.Equal(t, JournalMemory, cfg.Journal.Backend)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
resource:
  base_url: https://jsonplaceholder.typicode.com
  path: /users
  retry_delay: 250ms
journal:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 1h
log:
  level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.Resource.BaseURL)
	assert.Equal(t, "/users", cfg.Resource.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Resource.RetryDelay)
	assert.Equal(t, 3, cfg.Resource.Retries, "absent keys keep defaults")
	assert.Equal(t, JournalRedis, cfg.Journal.Backend)
	assert.Equal(t, "redis:6379", cfg.Journal.Redis.Addr)
	assert.Equal(t, "roster:journal:", cfg.Journal.Redis.Prefix)
	assert.Equal(t, time.Hour, cfg.Journal.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "roster.json", `{"http": {"port": 9090, "metrics": false}, "mock_api": {"failures": 2}}`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.Metrics)
	assert.Equal(t, 2, cfg.MockAPI.Failures)
}

func TestLoad_EnvFile(t *testing.T) {
	path := writeFile(t, "custom.yaml", "mcp:\n  transport: sse\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, TransportSSE, cfg.MCP.Transport)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "roster.yaml", "resource:\n  retries: 1\nlog:\n  level: warn\n")
	t.Setenv("ROSTER_RETRIES", "5")
	t.Setenv("ROSTER_TIMEOUT", "2s")
	t.Setenv("ROSTER_JOURNAL", "none")
	t.Setenv("ROSTER_HTTP_METRICS", "false")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Resource.Retries)
	assert.Equal(t, 2*time.Second, cfg.Resource.Timeout)
	assert.Equal(t, JournalNone, cfg.Journal.Backend)
	assert.False(t, cfg.HTTP.Metrics)
	assert.Equal(t, "warn", cfg.Log.Level, "file value survives when env is unset")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing Explicit File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		path := writeFile(t, "roster.yaml", "resource:\n  base_uri: http://x\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "base_uri")
	})

	t.Run("Bad Env Value", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("ROSTER_REDIS_DB", "zero")
		_, err := Load("")
		assert.ErrorContains(t, err, "ROSTER_REDIS_DB")
	})

	t.Run("Invalid Backend", func(t *testing.T) {
		path := writeFile(t, "roster.yaml", "journal:\n  backend: sqlite\n")
		_, err := Load(path)
		assert.ErrorContains(t, err, "journal.backend")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.HTTP.Port = 0
	cfg.MCP.Transport = "websocket"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "http.port")
	assert.ErrorContains(t, err, "mcp.transport")
}
