package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/retreat-leads/internal/model"
)

func TestAnnotate_BroadcastsToEveryRow(t *testing.T) {
	rows := []model.Occurrence{
		{OrganizerKey: "a", OrganizerName: "A"},
		{OrganizerKey: "b", OrganizerName: "B"},
		{OrganizerKey: "a", OrganizerName: "A"},
		{OrganizerKey: "zzz", OrganizerName: "orphan"},
	}
	index := map[string]*model.OrganizerSummary{
		"a": {
			Key: "a", OccurrenceCount: 2, UniqueLocationCount: 2,
			IsTravelingFacilitator: true, NameClass: model.NameUnclear,
			PriorityScore: 85, LeadType: model.LeadTravelingFacilitator,
		},
		"b": {
			Key: "b", OccurrenceCount: 1, UniqueLocationCount: 1,
			NameClass: model.NameLikelyVenue, PriorityScore: 30, LeadType: model.LeadVenueOwner,
		},
	}

	Annotate(rows, index)

	for _, i := range []int{0, 2} {
		assert.Equal(t, "2", rows[i].Get(model.ColOccurrenceCount))
		assert.Equal(t, "True", rows[i].Get(model.ColIsTravelingFacilitator))
		assert.Equal(t, "False", rows[i].Get(model.ColIsMultiPlatform))
		assert.Equal(t, "85", rows[i].Get(model.ColPriorityScore))
		assert.Equal(t, "TRAVELING_FACILITATOR", rows[i].Get(model.ColLeadType))
	}
	assert.Equal(t, "likely_venue", rows[1].Get(model.ColNameClassification))
	assert.Equal(t, model.AnalysisColumns, rows[1].Attrs.Keys())
	assert.Zero(t, rows[3].Attrs.Len())
}

func TestSortByPriority_StableDescending(t *testing.T) {
	mk := func(title, score string) model.Occurrence {
		o := model.Occurrence{EventTitle: title}
		if score != "" {
			o.Set(model.ColPriorityScore, score)
		}
		return o
	}
	rows := []model.Occurrence{mk("low", "30"), mk("none", ""), mk("high-1", "90"), mk("high-2", "90"), mk("mid", "50")}

	SortByPriority(rows)

	var titles []string
	for _, r := range rows {
		titles = append(titles, r.EventTitle)
	}
	assert.Equal(t, []string{"high-1", "high-2", "mid", "low", "none"}, titles)
}

func TestSortSummaries(t *testing.T) {
	sums := []model.OrganizerSummary{
		{Key: "a", PriorityScore: 50},
		{Key: "b", PriorityScore: 90},
		{Key: "c", PriorityScore: 50},
	}
	SortSummaries(sums)
	assert.Equal(t, "b", sums[0].Key)
	assert.Equal(t, "a", sums[1].Key)
	assert.Equal(t, "c", sums[2].Key)
}
