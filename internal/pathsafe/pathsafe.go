// Package pathsafe implements the path-safety gate every user-supplied path
// must pass through before any filesystem operation. Rules are applied in a
// fixed order; the first violation fails the whole resolution.
package pathsafe

import (
	"fmt"
	"path/filepath"
	"strings"

	"terrainforge/internal/apperr"
)

// Root is a sandbox root directory that user paths are resolved against.
// Separate roots exist for project files, asset files, and output
// artifacts; callers pick the root matching the operation.
type Root struct {
	name string
	abs  string
}

// NewRoot canonicalizes base and returns a sandbox Root. base must already
// exist; NewRoot does not create directories.
func NewRoot(name, base string) (*Root, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: resolve root %q: %w", base, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("pathsafe: resolve root %q: %w", base, err)
	}
	return &Root{name: name, abs: resolved}, nil
}

// Name returns the root's label, used in error messages and audit logs.
func (r *Root) Name() string { return r.name }

// Abs returns the root's canonical absolute path.
func (r *Root) Abs() string { return r.abs }

// Resolve validates candidate against the gate rules and returns the
// canonical absolute path, guaranteed to be inside r.
//
// Rules, applied in order; any violation returns an error wrapping
// apperr.ErrInvalidPath:
//  1. Reject empty strings.
//  2. Reject absolute paths.
//  3. Reject any component equal to "..".
//  4. Reject "." or "./" and empty path components.
//  5. Resolve the candidate relative to the sandbox root and canonicalize.
//  6. Verify the canonical result is still inside the root (catches symlink
//     traversal that steps 1-4 miss).
func (r *Root) Resolve(candidate string) (string, error) {
	if candidate == "" {
		return "", fmt.Errorf("%w: empty path", apperr.ErrInvalidPath)
	}
	if filepath.IsAbs(candidate) {
		return "", fmt.Errorf("%w: absolute path %q", apperr.ErrInvalidPath, candidate)
	}

	parts := strings.Split(filepath.ToSlash(candidate), "/")
	for _, part := range parts {
		switch part {
		case "..":
			return "", fmt.Errorf("%w: %q contains '..'", apperr.ErrInvalidPath, candidate)
		case ".", "":
			return "", fmt.Errorf("%w: %q contains an empty or '.' component", apperr.ErrInvalidPath, candidate)
		}
	}

	joined := filepath.Join(r.abs, filepath.FromSlash(candidate))

	// EvalSymlinks requires the path to exist. Resolve the deepest existing
	// ancestor's symlinks and re-append the remainder, so Resolve also works
	// for not-yet-created output paths.
	resolved, err := resolveExistingPrefix(joined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidPath, err)
	}

	rel, err := filepath.Rel(r.abs, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes sandbox root %q", apperr.ErrInvalidPath, candidate, r.name)
	}

	return resolved, nil
}
