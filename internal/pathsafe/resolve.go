package pathsafe

import (
	"os"
	"path/filepath"
)

// resolveExistingPrefix walks up from p until it finds an existing ancestor,
// resolves that ancestor's symlinks, and rejoins the non-existent suffix.
// This lets Resolve reject symlink-traversal for paths that already exist on
// disk while still returning a canonical path for artifacts not yet written.
func resolveExistingPrefix(p string) (string, error) {
	suffix := []string{}
	cur := p
	for {
		if _, err := os.Lstat(cur); err == nil {
			resolved, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			for i := len(suffix) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, suffix[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding an existing ancestor.
			return p, nil
		}
		suffix = append(suffix, filepath.Base(cur))
		cur = parent
	}
}
