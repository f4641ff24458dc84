package model

import (
	"math"
	"strconv"
	"strings"
)

// NameClass is the outcome of the keyword heuristic over an organizer name.
type NameClass string

const (
	NameLikelyVenue       NameClass = "likely_venue"
	NameLikelyFacilitator NameClass = "likely_facilitator"
	NameUnclear           NameClass = "unclear"
)

// AIClass is the label returned by the language-model classifier.
type AIClass string

const (
	AIFacilitator AIClass = "FACILITATOR"
	AIVenueOwner  AIClass = "VENUE_OWNER"
	AIUnclear     AIClass = "UNCLEAR"
)

// ParseAIClass normalizes s and reports whether it is a known label.
func ParseAIClass(s string) (AIClass, bool) {
	c := AIClass(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case AIFacilitator, AIVenueOwner, AIUnclear:
		return c, true
	default:
		return "", false
	}
}

// ParseConfidence reads a 0-100 confidence value. Float renderings such as
// "80.0" are accepted; out-of-range values are clamped. Empty or
// unparseable input returns nil.
func ParseConfidence(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	n := int(math.Round(f))
	n = min(max(n, 0), 100)
	return &n
}

// LeadType is the final categorical label for an organizer.
type LeadType string

const (
	LeadTravelingFacilitator LeadType = "TRAVELING_FACILITATOR"
	LeadFacilitator          LeadType = "FACILITATOR"
	LeadVenueOwner           LeadType = "VENUE_OWNER"
	LeadUnknown              LeadType = "UNKNOWN"
)

// AISignal is the classifier output as seen by scoring. A nil Confidence
// means the value was absent.
type AISignal struct {
	Class      AIClass `json:"class"`
	Confidence *int    `json:"confidence,omitempty"`
}

// OrganizerSummary is the organizer-level fold over all occurrences sharing
// an organizer key. It is derived data and always recomputable.
type OrganizerSummary struct {
	Key                    string    `json:"organizer_key"`
	Name                   string    `json:"organizer_name"`
	OccurrenceCount        int       `json:"occurrence_count"`
	UniqueLocationCount    int       `json:"unique_location_count"`
	Locations              []string  `json:"locations"`
	Platforms              []string  `json:"platforms"`
	IsTravelingFacilitator bool      `json:"is_traveling_facilitator"`
	IsMultiPlatform        bool      `json:"is_multi_platform"`
	NameClass              NameClass `json:"name_based_classification"`
	AI                     *AISignal `json:"ai,omitempty"`
	PriorityScore          int       `json:"priority_score"`
	LeadType               LeadType  `json:"lead_type"`
}

// AIAnalysis is the full classifier result, including the explanatory text
// written back onto ledger rows.
type AIAnalysis struct {
	Classification        AIClass  `json:"classification"`
	Confidence            int      `json:"confidence"`
	ProfileSummary        string   `json:"profile_summary"`
	WebsiteAnalysis       string   `json:"website_analysis"`
	OutreachTalkingPoints []string `json:"outreach_talking_points"`
	FitReasoning          string   `json:"fit_reasoning"`
	RedFlags              []string `json:"red_flags"`
	GreenFlags            []string `json:"green_flags"`
}

// listSeparator joins multi-valued AI fields into a single CSV cell.
const listSeparator = " | "

// Apply writes the analysis columns onto o.
func (a AIAnalysis) Apply(o *Occurrence) {
	o.Set(ColAIClassification, string(a.Classification))
	o.Set(ColAIConfidence, strconv.Itoa(a.Confidence))
	o.Set(ColProfileSummary, a.ProfileSummary)
	o.Set(ColWebsiteAnalysis, a.WebsiteAnalysis)
	o.Set(ColOutreachTalkingPoints, strings.Join(a.OutreachTalkingPoints, listSeparator))
	o.Set(ColFitReasoning, a.FitReasoning)
	o.Set(ColAIRedFlags, strings.Join(a.RedFlags, listSeparator))
	o.Set(ColAIGreenFlags, strings.Join(a.GreenFlags, listSeparator))
}
