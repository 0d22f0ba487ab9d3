package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cicd/internal/adapters/watcher"
	"go.trai.ch/cicd/internal/core/ports"
)

func TestIsConfigFile(t *testing.T) {
	assert.True(t, watcher.IsConfigFile("cicd.yaml"))
	assert.True(t, watcher.IsConfigFile("environments/dev.YML"))
	assert.False(t, watcher.IsConfigFile("buildspec.json"))
	assert.False(t, watcher.IsConfigFile("environments"))
}

func TestWatcher_ReportsYAMLChanges(t *testing.T) {
	root := t.TempDir()
	envDir := filepath.Join(root, "environments")
	require.NoError(t, os.MkdirAll(envDir, 0o750))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	w := watcher.NewWatcher()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 16)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
		close(events)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o600))
	target := filepath.Join(envDir, "dev.yaml")
	require.NoError(t, os.WriteFile(target, []byte("stageName: dev\n"), 0o600))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed early")
			assert.NotEqual(t, filepath.Join(root, "notes.txt"), ev.Path)
			if ev.Path == target {
				return
			}
		case <-deadline:
			t.Fatal("no event for the environment file")
		}
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := watcher.NewWatcher()
	assert.NoError(t, w.Stop())
}

func TestWatcher_EventsEndOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	w := watcher.NewWatcher()
	require.NoError(t, w.Start(ctx, t.TempDir()))
	defer func() { _ = w.Stop() }()

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events did not end after cancel")
	}
}
