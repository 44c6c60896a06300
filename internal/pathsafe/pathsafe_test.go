package pathsafe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrainforge/internal/apperr"
)

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	dir := t.TempDir()
	root, err := NewRoot("project", dir)
	require.NoError(t, err)
	return root
}

func TestResolveRejectsEmptyPath(t *testing.T) {
	root := newTestRoot(t)
	_, err := root.Resolve("")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestResolveRejectsAbsolutePath(t *testing.T) {
	root := newTestRoot(t)
	_, err := root.Resolve("/etc/passwd")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestResolveRejectsDotDot(t *testing.T) {
	root := newTestRoot(t)
	_, err := root.Resolve("../escape.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestResolveRejectsDotComponent(t *testing.T) {
	root := newTestRoot(t)
	_, err := root.Resolve("./foo.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestResolveAcceptsNestedPath(t *testing.T) {
	root := newTestRoot(t)
	resolved, err := root.Resolve("sub/dir/file.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resolved, root.Abs()))
}

func TestResolveCatchesSymlinkTraversal(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	root, err := NewRoot("project", dir)
	require.NoError(t, err)

	_, err = root.Resolve("link/secret.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestResolveIsDeterministicForAcceptedPaths(t *testing.T) {
	root := newTestRoot(t)
	a, err := root.Resolve("a/b.txt")
	require.NoError(t, err)
	b, err := root.Resolve("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
