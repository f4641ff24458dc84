package scorer

import (
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/model"
)

// Annotate writes each organizer's derived fields onto every row sharing its
// key. Rows whose key has no summary are left untouched.
func Annotate(rows []model.Occurrence, index map[string]*model.OrganizerSummary) {
	missing := 0
	for i := range rows {
		sum, ok := index[rows[i].OrganizerKey]
		if !ok {
			missing++
			continue
		}
		r := &rows[i]
		r.Set(model.ColOccurrenceCount, strconv.Itoa(sum.OccurrenceCount))
		r.Set(model.ColUniqueLocations, strconv.Itoa(sum.UniqueLocationCount))
		r.Set(model.ColIsTravelingFacilitator, formatBool(sum.IsTravelingFacilitator))
		r.Set(model.ColIsMultiPlatform, formatBool(sum.IsMultiPlatform))
		r.Set(model.ColNameClassification, string(sum.NameClass))
		r.Set(model.ColPriorityScore, strconv.Itoa(sum.PriorityScore))
		r.Set(model.ColLeadType, string(sum.LeadType))
	}
	if missing > 0 {
		zap.L().Warn("scorer: rows without an organizer summary", zap.Int("rows", missing))
	}
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// SortByPriority stable-sorts annotated rows by priority score, highest
// first. Rows without a score sort last.
func SortByPriority(rows []model.Occurrence) {
	slices.SortStableFunc(rows, func(a, b model.Occurrence) int {
		return rowScore(b) - rowScore(a)
	})
}

func rowScore(o model.Occurrence) int {
	n, err := strconv.Atoi(o.Get(model.ColPriorityScore))
	if err != nil {
		return -1
	}
	return n
}

// SortSummaries stable-sorts summaries by priority score, highest first.
func SortSummaries(sums []model.OrganizerSummary) {
	slices.SortStableFunc(sums, func(a, b model.OrganizerSummary) int {
		return b.PriorityScore - a.PriorityScore
	})
}
