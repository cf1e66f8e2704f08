// Package pathutil normalizes source file paths for use as stable record keys.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Normalize converts an absolute file path into a workspace-relative,
// forward-slash path. The result is stable across operating systems, which
// makes it safe to embed in record identifiers.
//
// Paths already relative to the workspace are cleaned and returned as-is.
// A path that escapes the workspace root is an error.
func Normalize(path, workspaceRoot string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("normalize path: empty path")
	}

	if !filepath.IsAbs(path) {
		cleaned := filepath.ToSlash(filepath.Clean(path))
		if escapesRoot(cleaned) {
			return "", fmt.Errorf("normalize path: %q is outside the workspace", path)
		}
		return cleaned, nil
	}

	if workspaceRoot == "" {
		return "", fmt.Errorf("normalize path: empty workspace root")
	}

	rel, err := filepath.Rel(workspaceRoot, path)
	if err != nil {
		return "", fmt.Errorf("normalize path %q: %w", path, err)
	}

	rel = filepath.ToSlash(rel)
	if escapesRoot(rel) {
		return "", fmt.Errorf("normalize path: %q is outside workspace %q", path, workspaceRoot)
	}
	return rel, nil
}

// escapesRoot reports whether a cleaned slash-separated relative path points
// above its base directory.
func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}
