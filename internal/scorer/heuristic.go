package scorer

import (
	"strings"

	"github.com/sells-group/retreat-leads/internal/config"
	"github.com/sells-group/retreat-leads/internal/model"
)

// Keywords holds the two lowercase keyword sets used by ClassifyName.
type Keywords struct {
	Venue       []string
	Facilitator []string
}

// KeywordsFrom lowercases and trims the keyword sets in c.
func KeywordsFrom(c config.ScoringConfig) Keywords {
	return Keywords{
		Venue:       lowerAll(c.VenueKeywords),
		Facilitator: lowerAll(c.FacilitatorKeywords),
	}
}

// DefaultKeywords returns the standard keyword sets.
func DefaultKeywords() Keywords {
	return KeywordsFrom(config.DefaultScoringConfig())
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ClassifyName counts keyword hits in the normalized name. The side with
// strictly more hits wins; a tie, including no hits at all, is unclear.
func ClassifyName(name string, kw Keywords) model.NameClass {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return model.NameUnclear
	}

	venue := countHits(n, kw.Venue)
	facilitator := countHits(n, kw.Facilitator)

	switch {
	case venue > facilitator:
		return model.NameLikelyVenue
	case facilitator > venue:
		return model.NameLikelyFacilitator
	default:
		return model.NameUnclear
	}
}

func countHits(name string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			n++
		}
	}
	return n
}
