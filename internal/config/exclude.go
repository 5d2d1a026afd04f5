package config

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeMatcher answers "should this path be skipped by the walk" against
// a fixed set of directory-name exclusions plus doublestar glob patterns
// (gitignore-style and configured Exclude entries).
type ExcludeMatcher struct {
	dirNames map[string]bool
	globs    []string
}

// NewExcludeMatcher builds a matcher from the default excluded directory
// names plus any additional glob patterns (gitignore lines, cfg.Exclude).
func NewExcludeMatcher(extraGlobs []string) *ExcludeMatcher {
	names := make(map[string]bool, len(DefaultExclude))
	for _, d := range DefaultExclude {
		names[d] = true
	}
	return &ExcludeMatcher{dirNames: names, globs: extraGlobs}
}

// MatchDir reports whether a directory should be skipped entirely
// (pruning the walk beneath it).
func (m *ExcludeMatcher) MatchDir(relPath string) bool {
	base := filepath.Base(relPath)
	if m.dirNames[base] {
		return true
	}
	return m.matchGlobs(relPath)
}

// MatchFile reports whether a file should be excluded from indexing.
func (m *ExcludeMatcher) MatchFile(relPath string) bool {
	return m.matchGlobs(relPath)
}

func (m *ExcludeMatcher) matchGlobs(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range m.globs {
		if matched, err := doublestar.PathMatch(pattern, relPath); err == nil && matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, err := doublestar.PathMatch(pattern, filepath.Base(relPath)); err == nil && matched {
				return true
			}
		}
	}
	return false
}
