package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrainforge/internal/jobstore"
)

func newTestOrchestrator(t *testing.T, binary string) (*Orchestrator, *jobstore.Store) {
	t.Helper()
	store, err := jobstore.Open(t.TempDir())
	require.NoError(t, err)
	return New(binary, t.TempDir(), store), store
}

func waitForTerminal(t *testing.T, store *jobstore.Store, jobID string) *jobstore.Job {
	t.Helper()
	var job *jobstore.Job
	require.Eventually(t, func() bool {
		j, err := store.Get(jobID)
		if err != nil {
			return false
		}
		job = j
		return j.Status == jobstore.StatusCompleted || j.Status == jobstore.StatusFailed || j.Status == jobstore.StatusCancelled
	}, 5*time.Second, 20*time.Millisecond)
	return job
}

func TestExecuteScriptSucceeds(t *testing.T) {
	orch, store := newTestOrchestrator(t, "/bin/true")
	job, err := store.Create("test", nil)
	require.NoError(t, err)

	err = orch.ExecuteScript(context.Background(), "unused-script", map[string]interface{}{"k": "v"}, job.ID, false)
	require.NoError(t, err)

	final := waitForTerminal(t, store, job.ID)
	assert.Equal(t, jobstore.StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
}

func TestExecuteScriptRecordsFailureOnNonZeroExit(t *testing.T) {
	orch, store := newTestOrchestrator(t, "/bin/false")
	job, err := store.Create("test", nil)
	require.NoError(t, err)

	err = orch.ExecuteScript(context.Background(), "unused-script", nil, job.ID, false)
	require.NoError(t, err)

	final := waitForTerminal(t, store, job.ID)
	assert.Equal(t, jobstore.StatusFailed, final.Status)
	assert.NotEmpty(t, final.Error)
}

func TestExecuteScriptMissingBinaryFailsSynchronously(t *testing.T) {
	orch, store := newTestOrchestrator(t, "/no/such/binary-xyz")
	job, err := store.Create("test", nil)
	require.NoError(t, err)

	err = orch.ExecuteScript(context.Background(), "script", nil, job.ID, false)
	require.Error(t, err)

	final, gerr := store.Get(job.ID)
	require.NoError(t, gerr)
	assert.Equal(t, jobstore.StatusFailed, final.Status)
}

func TestKillGracefullyStopsLongRunningJob(t *testing.T) {
	orch, store := newTestOrchestrator(t, "/bin/sh")
	job, err := store.Create("test", nil)
	require.NoError(t, err)

	// argv becomes: sh <scriptPath> <argsFile> <jobID> — the script ignores
	// its positional args and replaces the shell with a long sleep.
	script := filepath.Join(t.TempDir(), "sleep.sh")
	require.NoError(t, os.WriteFile(script, []byte("exec sleep 30\n"), 0o600))
	err = orch.ExecuteScript(context.Background(), script, nil, job.ID, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		orch.mu.Lock()
		_, ok := orch.handles[job.ID]
		orch.mu.Unlock()
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, orch.Kill(job.ID))

	final := waitForTerminal(t, store, job.ID)
	assert.Equal(t, jobstore.StatusCancelled, final.Status)
}

func TestValidateInstallation(t *testing.T) {
	orch, _ := newTestOrchestrator(t, "/bin/true")
	assert.True(t, orch.ValidateInstallation())

	orch2, _ := newTestOrchestrator(t, "/no/such/binary-xyz")
	assert.False(t, orch2.ValidateInstallation())
}
