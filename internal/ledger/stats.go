package ledger

import "sort"

// PlatformCount is the number of rows scraped from one platform.
type PlatformCount struct {
	Platform string
	Rows     int
}

// Stats summarizes ledger contents for operators.
type Stats struct {
	Rows          int
	Organizers    int
	DuplicateRows int
	ByPlatform    []PlatformCount
}

// Stats computes row, organizer and per-platform counts. Platforms are
// ordered by row count descending, then name.
func (l *Ledger) Stats() Stats {
	counts := make(map[string]int)
	for i := range l.rows {
		counts[string(l.rows[i].SourcePlatform)]++
	}

	byPlatform := make([]PlatformCount, 0, len(counts))
	for p, n := range counts {
		byPlatform = append(byPlatform, PlatformCount{Platform: p, Rows: n})
	}
	sort.Slice(byPlatform, func(i, j int) bool {
		if byPlatform[i].Rows != byPlatform[j].Rows {
			return byPlatform[i].Rows > byPlatform[j].Rows
		}
		return byPlatform[i].Platform < byPlatform[j].Platform
	})

	organizers := len(l.Keys())
	return Stats{
		Rows:          l.Len(),
		Organizers:    organizers,
		DuplicateRows: l.Len() - organizers,
		ByPlatform:    byPlatform,
	}
}
