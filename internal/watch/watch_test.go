package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func start(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(root, testDebounce, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func waitChange(w *Watcher, d time.Duration) bool {
	select {
	case _, ok := <-w.Changes():
		return ok
	case <-time.After(d):
		return false
	}
}

func TestWatcher_BurstIsOneSignal(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "p")
	require.NoError(t, os.MkdirAll(project, 0o755))
	w := start(t, root)

	path := filepath.Join(project, "s.jsonl")
	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i), '\n'}, 0o600))
	}

	assert.True(t, waitChange(w, 2*time.Second))
	assert.False(t, waitChange(w, 4*testDebounce), "burst coalesces")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	w := start(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))
	assert.False(t, waitChange(w, 4*testDebounce))
}

func TestWatcher_NewProjectDirectory(t *testing.T) {
	root := t.TempDir()
	w := start(t, root)

	project := filepath.Join(root, "new-project")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.True(t, waitChange(w, 2*time.Second), "directory creation signals")

	// Give the watcher a moment to register the new directory.
	time.Sleep(2 * testDebounce)
	require.NoError(t, os.WriteFile(filepath.Join(project, "s.jsonl"), []byte("{}\n"), 0o600))
	assert.True(t, waitChange(w, 2*time.Second))
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil)
	assert.Error(t, err)
}

func TestRun_ClosesChangesOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), testDebounce, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	_, ok := <-w.Changes()
	assert.False(t, ok)
}
