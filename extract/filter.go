package extract

import "github.com/bmatcuk/doublestar/v4"

// matchesFilters reports whether path should be unpacked given include and
// exclude glob lists: included if include is empty or path matches any
// include pattern, then excluded if it matches any exclude pattern.
// Unvalidated patterns (the caller's own Config) are treated as
// non-matching rather than causing extraction to fail.
func matchesFilters(path string, include, exclude []string) bool {
	if len(include) > 0 && !matchesAny(path, include) {
		return false
	}
	return !matchesAny(path, exclude)
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, path) {
			return true
		}
	}
	return false
}
