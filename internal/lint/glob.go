package lint

import (
	"path/filepath"
	"strings"
)

// GlobMatcher matches slash-separated paths against include/exclude patterns.
//
// Patterns use glob syntax with ** for recursive matching:
//   - * matches any sequence of non-separator characters
//   - ** matches any sequence of characters including separators
//   - ? matches any single non-separator character
//   - [abc] matches one of the characters in brackets
//
// GlobMatcher is safe for concurrent use after creation.
type GlobMatcher struct {
	includes []string
	excludes []string
}

// NewGlobMatcher creates a matcher. Empty includes accept every path that is not excluded.
func NewGlobMatcher(includes, excludes []string) *GlobMatcher {
	return &GlobMatcher{includes: includes, excludes: excludes}
}

// Match returns true if the path should be included.
func (m *GlobMatcher) Match(path string) bool {
	if m == nil {
		return true
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	for _, pattern := range m.excludes {
		if MatchGlob(pattern, path) {
			return false
		}
	}
	if len(m.includes) == 0 {
		return true
	}
	for _, pattern := range m.includes {
		if MatchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// Excluded reports whether path hits an exclude pattern.
func (m *GlobMatcher) Excluded(path string) bool {
	if m == nil {
		return false
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	for _, pattern := range m.excludes {
		if MatchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// MatchGlob matches a path against a glob pattern; patterns without a directory part
// also match the base name.
func MatchGlob(pattern, path string) bool {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, path)
	}
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if !strings.Contains(pattern, "/") {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}
	return false
}

// matchDoublestar handles patterns with ** segments by trying every split of the path.
func matchDoublestar(pattern, path string) bool {
	idx := strings.Index(pattern, "**")
	prefix := strings.TrimSuffix(pattern[:idx], "/")
	rest := strings.TrimPrefix(pattern[idx+2:], "/")

	segs := strings.Split(path, "/")
	start := 0
	if prefix != "" {
		psegs := strings.Split(prefix, "/")
		if len(psegs) > len(segs) {
			return false
		}
		if matched, _ := filepath.Match(prefix, strings.Join(segs[:len(psegs)], "/")); !matched {
			return false
		}
		start = len(psegs)
	}
	if rest == "" {
		return true
	}
	for i := start; i <= len(segs); i++ {
		sub := strings.Join(segs[i:], "/")
		if strings.Contains(rest, "**") {
			if matchDoublestar(rest, sub) {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(rest, sub); matched {
			return true
		}
	}
	return false
}
