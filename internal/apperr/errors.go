// Package apperr defines the small set of sentinel error categories the
// service runtime and CLI use to decide how to present a failure, following
// the teacher's typed-exit-code pattern (internal/cli/errors.go) but
// expressed as wrapped sentinel errors rather than cobra exit codes.
package apperr

import "errors"

// Sentinel categories. Wrap with fmt.Errorf("%w: ...", ErrX) and recover with
// errors.Is/errors.As at the boundary that needs to branch on category.
var (
	// ErrUnknownTool means the dispatched tool name has no registered handler.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidPath means a user-supplied path failed the path-safety gate.
	ErrInvalidPath = errors.New("invalid path")
	// ErrValidation means a graph failed structural or semantic validation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means a requested job or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrJobStateRegression means an Update attempted to move a job
	// backwards across the status partial order.
	ErrJobStateRegression = errors.New("job status regression rejected")
)

// ExitCode maps an error category to a process exit code for one-shot CLI
// commands (e.g. `terrainforge validate`), mirroring the teacher's
// errors.As-based exit code resolution in cmd/root.go.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrValidation):
		return 1
	case errors.Is(err, ErrInvalidPath):
		return 2
	case errors.Is(err, ErrNotFound):
		return 3
	case errors.Is(err, ErrUnknownTool):
		return 4
	default:
		return 1
	}
}
