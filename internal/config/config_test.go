package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "todo_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "今日の用事", cfg.UI.DefaultText)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  write_timeout: 30s
session:
  ttl: 2h
ui:
  title: "Errands"
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Errands", cfg.UI.Title)
	assert.Equal(t, "今日の用事", cfg.UI.DefaultText)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TODO_ADDR", "127.0.0.1:7000")
	t.Setenv("TODO_DEV_STATIC", "yes")
	t.Setenv("TODO_SESSION_TTL", "90m")
	t.Setenv("TODO_MAX_SESSIONS", "not-a-number")
	t.Setenv("TODO_DEFAULT_TEXT", "errands")
	t.Setenv("TODO_LOG_FORMAT", "json")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.True(t, cfg.Server.DevStatic)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10000, cfg.Session.MaxSessions)
	assert.Equal(t, "errands", cfg.UI.DefaultText)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_NegativeSessionLimitsSurviveDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
session:
  ttl: -1s
  max_sessions: -1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, -time.Second, cfg.Session.TTL)
	assert.Equal(t, -1, cfg.Session.MaxSessions)
}

func TestApplyEnv_NegativeSessionLimits(t *testing.T) {
	t.Setenv("TODO_SESSION_TTL", "-1s")
	t.Setenv("TODO_MAX_SESSIONS", "-1")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, -time.Second, cfg.Session.TTL)
	assert.Equal(t, -1, cfg.Session.MaxSessions)
}
