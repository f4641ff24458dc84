// Package aggregate folds ledger occurrences into one summary per organizer.
package aggregate

import (
	"strings"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/scorer"
)

// Aggregate groups rows by organizer key. Groups, their locations and
// platforms are kept in first-encounter order. The representative name comes
// from the group's first row and the AI signal from the earliest row with a
// recognized label, so the result depends only on row order. Scores are left
// zero; see scorer.ScoreAll.
func Aggregate(rows []model.Occurrence, kw scorer.Keywords) []model.OrganizerSummary {
	var groups []*group
	byKey := make(map[string]*group)

	for i := range rows {
		r := &rows[i]
		g, ok := byKey[r.OrganizerKey]
		if !ok {
			g = newGroup(r)
			byKey[r.OrganizerKey] = g
			groups = append(groups, g)
		}
		g.add(r)
	}

	out := make([]model.OrganizerSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.summary(kw))
	}
	return out
}

// Index maps organizer keys to their summary. The pointers alias sums.
func Index(sums []model.OrganizerSummary) map[string]*model.OrganizerSummary {
	idx := make(map[string]*model.OrganizerSummary, len(sums))
	for i := range sums {
		idx[sums[i].Key] = &sums[i]
	}
	return idx
}

type group struct {
	key       string
	name      string
	count     int
	locations orderedSet
	platforms orderedSet
	ai        *model.AISignal
}

func newGroup(r *model.Occurrence) *group {
	return &group{key: r.OrganizerKey, name: r.OrganizerName}
}

func (g *group) add(r *model.Occurrence) {
	g.count++
	g.locations.add(model.NormalizeCity(r.LocationCity))
	g.platforms.add(strings.TrimSpace(string(r.SourcePlatform)))

	if g.ai == nil {
		if class, ok := model.ParseAIClass(r.Get(model.ColAIClassification)); ok {
			g.ai = &model.AISignal{
				Class:      class,
				Confidence: model.ParseConfidence(r.Get(model.ColAIConfidence)),
			}
		}
	}
}

func (g *group) summary(kw scorer.Keywords) model.OrganizerSummary {
	return model.OrganizerSummary{
		Key:                    g.key,
		Name:                   g.name,
		OccurrenceCount:        g.count,
		UniqueLocationCount:    len(g.locations.items),
		Locations:              g.locations.items,
		Platforms:              g.platforms.items,
		IsTravelingFacilitator: len(g.locations.items) > 1,
		IsMultiPlatform:        len(g.platforms.items) > 1,
		NameClass:              scorer.ClassifyName(g.name, kw),
		AI:                     g.ai,
	}
}

// orderedSet keeps distinct non-empty strings in insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
