package scrape

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRetreatsListingURLs(t *testing.T) {
	base, _ := url.Parse("https://bookretreats.com/s/yoga-retreats/mexico")

	urls, err := BookRetreatsListingURLs([]byte(bookRetreatsSearchHTML), base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://bookretreats.com/r/7-day-tulum-yoga-retreat",
		"https://bookretreats.com/r/oaxaca-silent-retreat",
	}, urls)
}

func TestParseBookRetreatsListing_Graph(t *testing.T) {
	base, _ := url.Parse("https://bookretreats.com/s/yoga-retreats/mexico")
	pageURL := "https://bookretreats.com/r/7-day-tulum-yoga-retreat"

	l, err := ParseBookRetreatsListing([]byte(bookRetreatsListingHTML), pageURL, base)
	require.NoError(t, err)

	assert.Equal(t, "7 Day Tulum Yoga Retreat", l.Title)
	assert.Equal(t, "Wild Heart Yoga", l.Organizer)
	assert.Equal(t, "hello@wildheart.example", l.HostEmail)
	assert.Equal(t, "Tulum, Quintana Roo, Mexico", l.City)
	assert.Equal(t, "Calle 7 Sur 45", l.DetailedAddress)
	assert.Equal(t, "20.2114", l.Latitude)
	assert.Equal(t, "-87.4654", l.Longitude)
	assert.Equal(t, "EUR 1299", l.Price)
	assert.Equal(t, "4.8 (27 reviews)", l.Rating)
	assert.Equal(t, "2025-03-01 - 2025-03-08", l.Dates)
	assert.Equal(t, "Daily vinyasa, cenote swims and plant-based meals.", l.Description)
	assert.Equal(t, pageURL, l.EventURL)
	assert.Equal(t, "https://bookretreats.com/organizers/wild-heart-yoga", l.CenterURL)
	assert.Equal(t, "Wild Heart Yoga Calle 7 Sur 45", l.SearchQuery())
}

func TestParseBookRetreatsListing_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		html  string
		check func(t *testing.T, l Listing)
	}{
		{
			name: "direct object with string organizer and seller fallback unused",
			html: `<script type="application/ld+json">{"@type":"Event","name":"Surf and Yoga","organizer":"Ola Collective",
"location":{"address":"Puerto Escondido, Oaxaca"},"startDate":"2025-05-01"}</script>`,
			check: func(t *testing.T, l Listing) {
				assert.Equal(t, "Surf and Yoga", l.Title)
				assert.Equal(t, "Ola Collective", l.Organizer)
				assert.Equal(t, "Puerto Escondido, Oaxaca", l.City)
				assert.Equal(t, "Puerto Escondido, Oaxaca", l.DetailedAddress)
				assert.Equal(t, "2025-05-01", l.Dates)
			},
		},
		{
			name: "list form with seller and default currency",
			html: `<script type="application/ld+json">[{"name":"no type"},{"@type":"Product","headline":"Cacao Ceremony Week",
"offers":{"price":"850","seller":{"name":"Selva Sagrada"}}}]</script>`,
			check: func(t *testing.T, l Listing) {
				assert.Equal(t, "Cacao Ceremony Week", l.Title)
				assert.Equal(t, "Selva Sagrada", l.Organizer)
				assert.Equal(t, "USD 850", l.Price)
				assert.Empty(t, l.SearchQuery(), "no location")
			},
		},
		{
			name: "malformed json falls back to h1",
			html: `<script type="application/ld+json">{not json</script><h1> Jungle Detox </h1>`,
			check: func(t *testing.T, l Listing) {
				assert.Equal(t, "Jungle Detox", l.Title)
				assert.Empty(t, l.Organizer)
			},
		},
		{
			name: "graph without known type takes first node",
			html: `<script type="application/ld+json">{"@graph":[{"@type":"WebPage","name":"Page Title"},{"@type":"Thing","name":"Other"}]}</script>`,
			check: func(t *testing.T, l Listing) {
				assert.Equal(t, "Page Title", l.Title)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, err := ParseBookRetreatsListing([]byte("<html><head>"+tt.html+"</head><body></body></html>"), "https://bookretreats.com/r/x", nil)
			require.NoError(t, err)
			tt.check(t, l)
		})
	}
}
