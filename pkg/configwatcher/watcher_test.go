package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"study_assistant_backend/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
server:
  mode: debug
jwt:
  secret: watcher-test-secret
storage:
  type: local
  local_path: %s
quiz:
  strict_transitions: %s
`

func writeConfig(t *testing.T, file, storage, strict string) {
	t.Helper()
	body := []byte(fmt.Sprintf(configTemplate, storage, strict))
	require.NoError(t, os.WriteFile(file, body, 0o644))
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	storage := filepath.Join(dir, "uploads")
	file := filepath.Join(dir, "config.yaml")
	writeConfig(t, file, storage, "false")

	reloaded := make(chan *config.Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 完成注册
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, file, storage, "true")

	select {
	case cfg := <-reloaded:
		assert.True(t, cfg.Quiz.StrictTransitions)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*config.Config) {})
	assert.Error(t, err)
}
