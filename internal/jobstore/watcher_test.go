package jobstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWatcherPicksUpExternalFile(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	watcher, err := NewStatusWatcher(store)
	require.NoError(t, err)
	defer watcher.Stop()

	statusPath := filepath.Join(dir, "ext-1.status")
	require.NoError(t, os.WriteFile(statusPath, []byte(`{"status":"RUNNING","progress":10}`), 0o640))

	require.Eventually(t, func() bool {
		store.mu.Lock()
		_, ok := store.cache["ext-1"]
		store.mu.Unlock()
		return ok
	}, 2*time.Second, 20*time.Millisecond)

	job, err := store.Get("ext-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, job.Status)
}
