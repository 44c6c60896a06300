package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func captureStderr(t *testing.T, level LogLevel, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	Init(level, w)
	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestLogLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		LevelDebug:   "DEBUG",
		LevelInfo:    "INFO",
		LevelWarn:    "WARN",
		LevelError:   "ERROR",
		LogLevel(99): "UNKNOWN",
	}
	for level, want := range cases {
		assert.Equal(t, want, level.String())
	}
}

func TestLogLevelSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.SlogLevel())
	assert.Equal(t, slog.LevelError, LevelError.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogLevel(99).SlogLevel())
}

func TestInfoWritesSubsystemTag(t *testing.T) {
	out := captureStderr(t, LevelDebug, func() {
		Info("jobstore", "job %s created", "abc123")
	})
	assert.Contains(t, out, "subsystem=jobstore")
	assert.Contains(t, out, "job abc123 created")
}

func TestErrorIncludesErrorAttribute(t *testing.T) {
	out := captureStderr(t, LevelDebug, func() {
		Error("orchestrator", assertErr{}, "spawn failed")
	})
	assert.Contains(t, out, "subsystem=orchestrator")
	assert.Contains(t, out, "error=boom")
}

func TestDebugSuppressedAboveLevel(t *testing.T) {
	out := captureStderr(t, LevelInfo, func() {
		Debug("jobstore", "should not appear")
	})
	assert.Empty(t, strings.TrimSpace(out))
}

func TestAuditFormatsKeyValueLine(t *testing.T) {
	out := captureStderr(t, LevelDebug, func() {
		Audit(AuditEvent{Action: "job_kill", Outcome: "success", JobID: "job-1", Details: "graceful"})
	})
	assert.Contains(t, out, "[AUDIT] action=job_kill outcome=success job=job-1 details=graceful")
}
