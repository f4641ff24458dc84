// Package scorer classifies organizers and ranks them as venue-rental leads.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retreat-leads/internal/config"
)

// DefaultScorerConfig returns the standard scoring rules.
func DefaultScorerConfig() config.ScoringConfig {
	return config.DefaultScoringConfig()
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	// Point values are magnitudes; the sign is applied by the scorer.
	points := []struct {
		name string
		v    int
	}{
		{"base", c.Base},
		{"traveling_bonus", c.TravelingBonus},
		{"multi_platform_bonus", c.MultiPlatformBonus},
		{"active_bonus", c.ActiveBonus},
		{"repeat_bonus", c.RepeatBonus},
		{"ai_facilitator_max", c.AIFacilitatorMax},
		{"ai_venue_penalty_max", c.AIVenuePenaltyMax},
		{"name_facilitator_bonus", c.NameFacilitatorBonus},
		{"name_venue_penalty", c.NameVenuePenalty},
	}
	for _, p := range points {
		if p.v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", p.name))
		}
	}

	if c.Base > maxScore {
		errs = append(errs, fmt.Sprintf("base must be <= %d", maxScore))
	}

	// Occurrence thresholds.
	if c.RepeatMinOccurrences < 1 {
		errs = append(errs, "repeat_min_occurrences must be >= 1")
	}
	if c.ActiveMinOccurrences < c.RepeatMinOccurrences {
		errs = append(errs, "active_min_occurrences must be >= repeat_min_occurrences")
	}

	// Confidence values.
	if c.AIConfidenceThreshold < 0 || c.AIConfidenceThreshold > 100 {
		errs = append(errs, "ai_confidence_threshold must be between 0 and 100")
	}
	if c.DefaultAIConfidence < 0 || c.DefaultAIConfidence > 100 {
		errs = append(errs, "default_ai_confidence must be between 0 and 100")
	}

	// Keywords.
	for _, kw := range c.VenueKeywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, "venue_keywords must not contain blank entries")
			break
		}
	}
	for _, kw := range c.FacilitatorKeywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, "facilitator_keywords must not contain blank entries")
			break
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
