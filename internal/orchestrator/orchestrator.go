// Package orchestrator launches and supervises external CLI binaries as
// background jobs (spec §4.2), grounded on the original Python
// tools/mcp/blender/core/blender_executor.py ExecuteScript/kill_process/
// _monitor_process logic, expressed with goroutines and a counting
// semaphore instead of an async runtime (see SPEC_FULL.md §B and spec.md
// §9 Design Notes on non-async targets).
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"

	"terrainforge/internal/jobstore"
	"terrainforge/pkg/logging"
)

const subsystem = "orchestrator"

// DefaultTimeout is the default per-job subprocess timeout (spec §5).
const DefaultTimeout = 300 * time.Second

// GracefulKillDeadline is the fixed window between a graceful terminate
// signal and a hard kill (spec §4.2, §5).
const GracefulKillDeadline = 5 * time.Second

// handle is the transient, in-memory-only subprocess handle (spec §3):
// weakly owns an OS process plus its log sink, destroyed when the process
// exits or is killed.
type handle struct {
	cmd       *exec.Cmd
	logFile   *os.File
	cancelled bool
	mu        sync.Mutex
}

// Orchestrator gates concurrent subprocess spawns with a counting semaphore
// of capacity max(1, floor(cpu/2)) and tracks live subprocess handles.
type Orchestrator struct {
	binary string
	logDir string
	store  *jobstore.Store

	sem *semaphore.Weighted

	mu      sync.Mutex
	handles map[string]*handle
}

// New constructs an Orchestrator that spawns binary, logs subprocess output
// under logDir, and records job lifecycle transitions in store.
func New(binary, logDir string, store *jobstore.Store) *Orchestrator {
	capacity := runtime.NumCPU() / 2
	if capacity < 1 {
		capacity = 1
	}
	return &Orchestrator{
		binary:  binary,
		logDir:  logDir,
		store:   store,
		sem:     semaphore.NewWeighted(int64(capacity)),
		handles: make(map[string]*handle),
	}
}

// ExecuteScript spawns the external binary with argv
// [binary, --headless?, scriptPath, argsFile, jobID], where argsFile is a
// temp JSON file containing args. It blocks on the concurrency semaphore
// before spawning; once the child is spawned it returns immediately — the
// caller does not wait for process completion.
//
// headless controls whether a "--headless"-style flag is included; callers
// that don't need it pass false.
func (o *Orchestrator) ExecuteScript(ctx context.Context, scriptPath string, args map[string]interface{}, jobID string, headless bool) error {
	if _, err := exec.LookPath(o.binary); err != nil {
		failMsg := fmt.Sprintf("binary not found: %s", o.binary)
		_, _ = o.store.Update(jobID, jobstore.Update{
			Status: statusPtr(jobstore.StatusFailed),
			Error:  &failMsg,
		})
		logging.Error(subsystem, err, "executable %q missing", o.binary)
		return fmt.Errorf("orchestrator: %s: %w", failMsg, err)
	}

	argsFile, err := writeArgsFile(args, jobID)
	if err != nil {
		return fmt.Errorf("orchestrator: write args file: %w", err)
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		_ = os.Remove(argsFile)
		return fmt.Errorf("orchestrator: acquire concurrency slot: %w", err)
	}

	argv := []string{}
	if headless {
		argv = append(argv, "--headless")
	}
	argv = append(argv, scriptPath, argsFile, jobID)

	cmd := exec.Command(o.binary, argv...)

	logPath, logFile, err := o.openLogFile(jobID)
	if err != nil {
		// Log-file IO error is swallowed per spec: job completion must still
		// be recorded, so we fall back to an in-memory discard sink.
		logging.Warn(subsystem, "could not open log file for job %s: %v", jobID, err)
	}
	if logFile != nil {
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	} else {
		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	if err := cmd.Start(); err != nil {
		o.sem.Release(1)
		_ = os.Remove(argsFile)
		if logFile != nil {
			_ = logFile.Close()
		}
		failMsg := fmt.Sprintf("failed to start subprocess: %v", err)
		_, _ = o.store.Update(jobID, jobstore.Update{
			Status: statusPtr(jobstore.StatusFailed),
			Error:  &failMsg,
		})
		return fmt.Errorf("orchestrator: %s", failMsg)
	}

	h := &handle{cmd: cmd, logFile: logFile}
	o.mu.Lock()
	o.handles[jobID] = h
	o.mu.Unlock()

	running := jobstore.StatusRunning
	_, _ = o.store.Update(jobID, jobstore.Update{Status: &running})
	logging.Info(subsystem, "job %s started (pid %d)", jobID, cmd.Process.Pid)

	go o.monitor(jobID, h, argsFile, logPath)
	return nil
}

// monitor awaits process exit, captures output, and reconciles job status.
// Runs detached from the ExecuteScript caller (spec §4.2 Monitor task).
func (o *Orchestrator) monitor(jobID string, h *handle, argsFile, logPath string) {
	defer o.sem.Release(1)
	defer func() {
		o.mu.Lock()
		delete(o.handles, jobID)
		o.mu.Unlock()
		if err := os.Remove(argsFile); err != nil && !os.IsNotExist(err) {
			logging.Warn(subsystem, "failed to remove args file for job %s: %v", jobID, err)
		}
		if h.logFile != nil {
			_ = h.logFile.Close()
		}
	}()

	err := h.cmd.Wait()

	h.mu.Lock()
	cancelled := h.cancelled
	h.mu.Unlock()

	if err == nil {
		outputPath := conventionalArtifactPath(logPath)
		upd := jobstore.Update{
			Status:   statusPtr(jobstore.StatusCompleted),
			Progress: intPtr(100),
		}
		if outputPath != "" {
			upd.OutputPath = &outputPath
		}
		if _, uerr := o.store.Update(jobID, upd); uerr != nil {
			logging.Warn(subsystem, "job %s completed but status update failed: %v", jobID, uerr)
		}
		logging.Info(subsystem, "job %s completed", jobID)
		return
	}

	if cancelled {
		// Monitor reconciles the terminal state but never overwrites an
		// already-CANCELLED status with FAILED (spec §4.2, §5 Cancellation).
		job, gerr := o.store.Get(jobID)
		if gerr == nil && job.Status == jobstore.StatusCancelled {
			return
		}
		cancelledStatus := jobstore.StatusCancelled
		msg := "killed"
		_, _ = o.store.Update(jobID, jobstore.Update{Status: &cancelledStatus, Message: &msg})
		return
	}

	excerpt := stderrExcerpt(logPath)
	errMsg := fmt.Sprintf("exit error: %v; stderr: %s", err, excerpt)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		errMsg = fmt.Sprintf("exit code %d; stderr: %s", exitErr.ExitCode(), excerpt)
	}
	_, _ = o.store.Update(jobID, jobstore.Update{
		Status: statusPtr(jobstore.StatusFailed),
		Error:  &errMsg,
	})
	logging.Warn(subsystem, "job %s failed: %s", jobID, errMsg)
}

// Kill sends a graceful terminate signal to job id's subprocess, escalating
// to a hard kill after GracefulKillDeadline. Returns once the signal has
// been delivered, not once the process has exited (spec §5 Cancellation).
func (o *Orchestrator) Kill(jobID string) error {
	o.mu.Lock()
	h, ok := o.handles[jobID]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("orchestrator: no running subprocess for job %s", jobID)
	}

	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()

	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logging.Warn(subsystem, "job %s: SIGTERM failed, killing: %v", jobID, err)
		_ = h.cmd.Process.Kill()
		logging.Audit(logging.AuditEvent{Action: "job_kill", Outcome: "success", JobID: jobID, Details: "hard-killed immediately"})
		return nil
	}

	go o.waitAndHardKill(jobID, h)
	logging.Audit(logging.AuditEvent{Action: "job_kill", Outcome: "success", JobID: jobID, Details: "graceful"})
	return nil
}

func (o *Orchestrator) waitAndHardKill(jobID string, h *handle) {
	timer := time.NewTimer(GracefulKillDeadline)
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		_, _ = h.cmd.Process.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-timer.C:
		logging.Warn(subsystem, "job %s: graceful deadline elapsed, hard-killing", jobID)
		_ = h.cmd.Process.Kill()
	}
}

// Version introspects the external binary's reported version string.
func (o *Orchestrator) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, o.binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("orchestrator: version probe: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ValidateInstallation is a boolean probe for whether the external binary
// is present and executable.
func (o *Orchestrator) ValidateInstallation() bool {
	_, err := exec.LookPath(o.binary)
	return err == nil
}

func (o *Orchestrator) openLogFile(jobID string) (string, *os.File, error) {
	if err := os.MkdirAll(o.logDir, 0o750); err != nil {
		// Permission denied on output dir: fall back to the parent directory
		// after logging the attempted path (spec §4.2 Failure modes).
		parent := filepath.Dir(o.logDir)
		logging.Warn(subsystem, "could not create log dir %q (%v), falling back to %q", o.logDir, err, parent)
		if mkErr := os.MkdirAll(parent, 0o750); mkErr != nil {
			return "", nil, mkErr
		}
		path := filepath.Join(parent, jobID+".log")
		f, ferr := os.Create(path)
		return path, f, ferr
	}
	path := filepath.Join(o.logDir, jobID+".log")
	f, err := os.Create(path)
	return path, f, err
}

func writeArgsFile(args map[string]interface{}, jobID string) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "terrainforge-args-"+jobID+"-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// conventionalArtifactPath checks whether the well-known artifact sibling
// of the log file exists (e.g. "<job>.log" -> "<job>.out"); returns "" if
// not found, in which case output_path is left unset.
func conventionalArtifactPath(logPath string) string {
	if logPath == "" {
		return ""
	}
	candidate := strings.TrimSuffix(logPath, ".log") + ".out"
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func stderrExcerpt(logPath string) string {
	if logPath == "" {
		return ""
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		return ""
	}
	const maxExcerpt = 2000
	if len(data) > maxExcerpt {
		data = data[len(data)-maxExcerpt:]
	}
	return string(data)
}

func statusPtr(s jobstore.Status) *jobstore.Status { return &s }
func intPtr(i int) *int                            { return &i }
