package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/retreat-leads/internal/model"
)

func TestListingSearchQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		l    Listing
		want string
	}{
		{"address preferred", Listing{Organizer: "Casa Luz", City: "Tulum, Mexico", DetailedAddress: "Km 8 Tulum"}, "Casa Luz Km 8 Tulum"},
		{"city fallback", Listing{Organizer: "Casa Luz", City: "Tulum, Mexico"}, "Casa Luz Tulum, Mexico"},
		{"no location", Listing{Organizer: "Casa Luz"}, ""},
		{"no organizer", Listing{City: "Tulum"}, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.l.SearchQuery())
		})
	}
}

func TestListingOccurrence(t *testing.T) {
	b := Batch{ID: "b1", Platform: model.PlatformRetreatGuru, Label: "rg-yoga-mexico", SourceURL: "https://retreat.guru/search", ScrapedAt: "2025-01-15 09:30:00"}
	l := Listing{
		Title:       "Ocean Yoga",
		Organizer:   "Casa Luz",
		City:        "  Tulum, Mexico ",
		EventURL:    "https://retreat.guru/events/1",
		Description: strings.Repeat("x", 600),
		HostEmail:   "ignored@example.com",
	}

	o := l.Occurrence(b)
	assert.Equal(t, "Tulum, Mexico", o.LocationCity)
	assert.Equal(t, "rg-yoga-mexico", o.SourceLabel)
	assert.Equal(t, "2025-01-15 09:30:00", o.ScrapedAt)
	assert.Len(t, o.Get(model.ColCenterDescription), descriptionMax)
	assert.False(t, o.Attrs.Has(model.ColHostEmailScraped), "retreat.guru rows carry no host email column")
	assert.Equal(t, []string{
		model.ColBatchID, model.ColDates, model.ColPrice, model.ColRating, model.ColCenterURL,
		model.ColDetailedAddress, model.ColCenterDescription, model.ColSearchQuery,
	}, o.Attrs.Keys())
}
