// Package pathutil resolves and validates the filesystem locations used by
// task mirrors.
//
// Mirror paths are always derived from a configured base directory; the helpers
// here make sure a derived path cannot escape that directory, even through
// symlinks, and that the base directory itself is usable before serving.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned by ValidateDir when the path exists but is a file.
var ErrNotDirectory = errors.New("not a directory")

// ValidateDir checks that dir is non-empty, exists and is a directory.
//
// Returns the cleaned absolute form of dir.
func ValidateDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("directory is empty or whitespace-only")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to make %q absolute: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	return abs, nil
}

// ResolveSafePath resolves name relative to baseDir and guarantees the result
// stays inside baseDir once symlinks are resolved.
//
// The target itself does not need to exist; the nearest existing ancestor is
// resolved instead. Absolute names are accepted but must still land inside baseDir.
//
// Returns an error if name is empty, contains a null byte, or escapes baseDir.
func ResolveSafePath(baseDir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("path is empty or whitespace-only")
	}
	if strings.Contains(name, "\x00") {
		return "", fmt.Errorf("path contains null byte")
	}

	candidate := name
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveExisting(candidate)
	if err != nil {
		return "", err
	}

	base, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", name)
	}

	return resolved, nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of path and
// re-appends the components that do not exist yet.
func resolveExisting(path string) (string, error) {
	current := path
	var missing []string

	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory found")
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
