package scrape

import (
	"net/url"
	"path"
	"strings"
)

// PathMatcher selects URLs by glob-style path patterns. A URL matches when
// its path matches at least one include pattern (or none are set) and no
// exclude pattern.
type PathMatcher struct {
	include []string
	exclude []string
}

// NewPathMatcher creates a PathMatcher. Patterns are case-insensitive.
func NewPathMatcher(include, exclude []string) *PathMatcher {
	lower := func(ps []string) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = strings.ToLower(p)
		}
		return out
	}
	return &PathMatcher{include: lower(include), exclude: lower(exclude)}
}

// Match reports whether rawURL is selected. Unparseable URLs never match.
func (m *PathMatcher) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)

	if len(m.include) > 0 && !matchAny(m.include, p) {
		return false
	}
	return !matchAny(m.exclude, p)
}

func matchAny(patterns []string, urlPath string) bool {
	for _, pattern := range patterns {
		if matchSegmented(pattern, urlPath) {
			return true
		}
	}
	return false
}

// matchSegmented performs glob matching where a pattern like "/r/*"
// matches both "/r/slug" and "/r/deep/nested/path".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}

	return false
}
