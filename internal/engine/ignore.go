package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName is the per-working-copy ignore file read by the native
// engine, gitignore syntax.
const IgnoreFileName = ".wcsignore"

// ignoreMatcher filters paths during recursive adds. A nil matcher ignores
// nothing.
type ignoreMatcher struct {
	matcher gitignore.Matcher
}

// loadIgnoreMatcher builds a matcher from root/.wcsignore plus extra
// patterns from the configuration. A missing ignore file is not an error.
func loadIgnoreMatcher(root string, extra []string) (*ignoreMatcher, error) {
	var patterns []gitignore.Pattern

	data, err := os.ReadFile(filepath.Join(root, IgnoreFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	for _, p := range extra {
		if p == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if len(patterns) == 0 {
		return &ignoreMatcher{}, nil
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Ignored reports whether the root-relative path matches an ignore pattern.
func (m *ignoreMatcher) Ignored(relPath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relPath), isDir)
}

// splitPath splits a forward-slash path into the segments the gitignore
// matcher expects, dropping empty and "." segments.
func splitPath(relPath string) []string {
	parts := strings.Split(relPath, "/")
	segments := parts[:0:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
