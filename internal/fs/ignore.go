package fs

import (
	"path/filepath"
	"strings"
)

// IgnoreMatcher checks file paths against a set of shell-glob ignore
// patterns. A path is ignored when ANY pattern matches ANY of its components:
// the basename or any ancestor directory name. Patterns never match the full
// path string, only single components — "*.log" ignores app.log anywhere, and
// ".*" ignores everything under any dot-directory.
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank patterns are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		patterns = append(patterns, raw)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the given path should be ignored. Every component of
// the path is tested against every pattern.
func (m *IgnoreMatcher) Match(path string) bool {
	if len(m.patterns) == 0 {
		return false
	}

	for path != "" && path != string(filepath.Separator) {
		dir, name := filepath.Split(path)
		for _, p := range m.patterns {
			matched, err := filepath.Match(p, name)
			if err != nil {
				// Bad pattern — skip rather than crash.
				continue
			}
			if matched {
				return true
			}
		}
		path = strings.TrimSuffix(dir, string(filepath.Separator))
	}
	return false
}
