package scorer

import (
	"math"

	"github.com/sells-group/retreat-leads/internal/config"
	"github.com/sells-group/retreat-leads/internal/model"
)

const (
	minScore = 0
	maxScore = 100
)

// Result is the outcome of scoring one organizer.
type Result struct {
	PriorityScore int            `json:"priority_score"`
	LeadType      model.LeadType `json:"lead_type"`
}

// Scorer ranks organizer summaries. It is a pure function of its config and
// input and never fails.
type Scorer struct {
	cfg config.ScoringConfig
	kw  Keywords
}

// New creates a Scorer with the given rules.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, kw: KeywordsFrom(cfg)}
}

// Keywords returns the name-heuristic keyword sets.
func (s *Scorer) Keywords() Keywords { return s.kw }

// Score computes the priority score and lead type for one summary.
func (s *Scorer) Score(sum model.OrganizerSummary) Result {
	return Result{
		PriorityScore: s.priority(sum),
		LeadType:      s.leadType(sum),
	}
}

// ScoreAll scores every summary in place.
func (s *Scorer) ScoreAll(sums []model.OrganizerSummary) {
	for i := range sums {
		r := s.Score(sums[i])
		sums[i].PriorityScore = r.PriorityScore
		sums[i].LeadType = r.LeadType
	}
}

func (s *Scorer) priority(sum model.OrganizerSummary) int {
	c := s.cfg
	score := c.Base

	if sum.IsTravelingFacilitator {
		score += c.TravelingBonus
	}
	if sum.IsMultiPlatform {
		score += c.MultiPlatformBonus
	}
	switch {
	case sum.OccurrenceCount >= c.ActiveMinOccurrences:
		score += c.ActiveBonus
	case sum.OccurrenceCount >= c.RepeatMinOccurrences:
		score += c.RepeatBonus
	}

	// A classifier opinion replaces the name heuristic entirely.
	if class, conf, ok := s.aiSignal(sum); ok {
		scaled := float64(conf) / 100
		switch class {
		case model.AIFacilitator:
			score += int(math.Round(float64(c.AIFacilitatorMax) * scaled))
		case model.AIVenueOwner:
			score -= int(math.Round(float64(c.AIVenuePenaltyMax) * scaled))
		}
	} else {
		switch sum.NameClass {
		case model.NameLikelyFacilitator:
			score += c.NameFacilitatorBonus
		case model.NameLikelyVenue:
			score -= c.NameVenuePenalty
		}
	}

	return min(max(score, minScore), maxScore)
}

func (s *Scorer) leadType(sum model.OrganizerSummary) model.LeadType {
	if class, conf, ok := s.aiSignal(sum); ok && conf >= s.cfg.AIConfidenceThreshold {
		switch {
		case sum.IsTravelingFacilitator:
			return model.LeadTravelingFacilitator
		case class == model.AIFacilitator:
			return model.LeadFacilitator
		case class == model.AIVenueOwner:
			return model.LeadVenueOwner
		}
	}

	switch {
	case sum.IsTravelingFacilitator:
		return model.LeadTravelingFacilitator
	case sum.NameClass == model.NameLikelyVenue:
		return model.LeadVenueOwner
	case sum.NameClass == model.NameLikelyFacilitator:
		return model.LeadFacilitator
	default:
		return model.LeadUnknown
	}
}

// aiSignal returns the classifier label and its confidence, substituting the
// configured default when confidence is missing. ok is false when there is
// no usable label.
func (s *Scorer) aiSignal(sum model.OrganizerSummary) (model.AIClass, int, bool) {
	if sum.AI == nil {
		return "", 0, false
	}
	class, ok := model.ParseAIClass(string(sum.AI.Class))
	if !ok {
		return "", 0, false
	}
	conf := s.cfg.DefaultAIConfidence
	if sum.AI.Confidence != nil {
		conf = min(max(*sum.AI.Confidence, 0), 100)
	}
	return class, conf, true
}
