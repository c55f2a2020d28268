// Package safeio guards filesystem access driven by untrusted input, such
// as asset paths taken from HTTP requests.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTraversal rejects paths that try to climb out of their directory.
var ErrTraversal = errors.New("path traversal detected")

// CleanUserPath normalizes a caller-supplied relative path. Any remaining
// ".." element after cleaning means the path points outside its root, so
// it is rejected. The result always uses forward slashes.
func CleanUserPath(p string) (string, error) {
	cleaned := filepath.Clean(p)
	if cleaned == ".." || strings.Contains(cleaned, "..") {
		return "", ErrTraversal
	}
	return filepath.ToSlash(cleaned), nil
}

// ReadFileContained reads filePath only when it resolves inside baseDir.
func ReadFileContained(baseDir, filePath string) ([]byte, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	fileAbs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolving file path: %w", err)
	}

	rel, err := filepath.Rel(baseAbs, fileAbs)
	if err != nil {
		return nil, fmt.Errorf("relating %s to %s: %w", fileAbs, baseAbs, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside %s", fileAbs, baseAbs)
	}

	// #nosec G304 -- fileAbs verified contained in baseAbs above
	return os.ReadFile(fileAbs)
}

// WriteFilePreservePerms replaces the contents of path, keeping the mode of
// an existing file. New files get 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		if m := st.Mode() & 0o777; m != 0 {
			mode = m
		}
	}
	return os.WriteFile(path, data, mode)
}
