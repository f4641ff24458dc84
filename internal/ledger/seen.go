package ledger

import "strings"

// SeenSet is the set of listing URLs already captured in the ledger.
// Scrapers consult it before producing a batch so listings are not
// re-scraped; the ledger itself never filters on it.
type SeenSet struct {
	urls map[string]struct{}
}

// NewSeenSet returns an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{urls: make(map[string]struct{})}
}

// SeenEventURLs collects every non-empty event_url in the ledger.
func (l *Ledger) SeenEventURLs() *SeenSet {
	s := NewSeenSet()
	for i := range l.rows {
		s.Add(l.rows[i].EventURL)
	}
	return s
}

// Add records url. Empty URLs are ignored.
func (s *SeenSet) Add(url string) {
	if k := normalizeURL(url); k != "" {
		s.urls[k] = struct{}{}
	}
}

// Contains reports whether url has been seen.
func (s *SeenSet) Contains(url string) bool {
	if s == nil {
		return false
	}
	k := normalizeURL(url)
	if k == "" {
		return false
	}
	_, ok := s.urls[k]
	return ok
}

// Len returns the number of URLs in the set.
func (s *SeenSet) Len() int { return len(s.urls) }

func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}
