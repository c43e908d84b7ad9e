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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	storage := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  mode: debug
jwt:
  secret: short
storage:
  type: local
  local_path: `+storage+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.False(t, cfg.Quiz.StrictTransitions)
	assert.Equal(t, 60*time.Second, cfg.Quiz.GenerationTimeout())
	assert.Equal(t, time.Hour, cfg.Quiz.MetricsCacheTTL())
	assert.Equal(t, 200, cfg.Quiz.HistoryLimit)
	assert.Equal(t, "logs/app.log", cfg.Logging.File)

	_, err = os.Stat(storage)
	assert.NoError(t, err, "local storage directory should be created")
}

func TestLoadConfig_FileValues(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
database:
  driver: sqlite
  sqlite_path: /tmp/quiz.db
storage:
  type: minio
  minio_bucket: exports
quiz:
  strict_transitions: true
  generation_timeout_seconds: 15
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/quiz.db", cfg.Database.SQLitePath)
	assert.Equal(t, "exports", cfg.Storage.MinioBucket)
	assert.True(t, cfg.Quiz.StrictTransitions)
	assert.Equal(t, 15*time.Second, cfg.Quiz.GenerationTimeout())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
`)
	t.Setenv("JWT_SECRET", "from-the-environment")
	t.Setenv("AI_MODEL", "gpt-4o")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-the-environment", cfg.JWT.Secret)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
}

func TestLoadConfig_ReleaseRequiresStrongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: too-short
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is too short")
}

func TestLoadConfig_RejectsNonPositiveGenerationTimeout(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
quiz:
  generation_timeout_seconds: 0
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
