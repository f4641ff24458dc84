package scrape

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetreatGuruSearch(t *testing.T) {
	base, _ := url.Parse("https://retreat.guru/search?topic=yoga&country=mexico")

	listings, err := ParseRetreatGuruSearch([]byte(retreatGuruSearchHTML), base)
	require.NoError(t, err)
	require.Len(t, listings, 3, "tile without title or link is dropped")

	first := listings[0]
	assert.Equal(t, "7 Day Ocean Yoga Immersion", first.Title)
	assert.Equal(t, "https://retreat.guru/events/1234-56/7-day-ocean-yoga", first.EventURL)
	assert.Equal(t, "Casa Luz Tulum", first.Organizer)
	assert.Equal(t, "https://retreat.guru/centers/987-1/casa-luz-tulum", first.CenterURL)
	assert.Equal(t, "Tulum, Mexico", first.City)
	assert.Equal(t, "Mar 3 - 10, 2025", first.Dates)
	assert.Equal(t, "$1,450", first.Price)
	assert.Equal(t, "4.9 (32 reviews)", first.Rating)

	second := listings[1]
	assert.Equal(t, "https://retreat.guru/events/2222-10/breathwork-weekend", second.EventURL, "fragment dropped")
	assert.Equal(t, "Mexico", second.City, "country-only span used as fallback")
	assert.Equal(t, "$600", second.Price)
	assert.Empty(t, second.Dates)

	assert.Equal(t, "Ana Ruiz Yoga", listings[2].Organizer)
	assert.Equal(t, "Oaxaca, Mexico", listings[2].City)
}

func TestParseRetreatGuruSearch_NoTiles(t *testing.T) {
	listings, err := ParseRetreatGuruSearch([]byte("<html><body><p>No results</p></body></html>"), nil)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestParseRetreatGuruCenter(t *testing.T) {
	d, err := ParseRetreatGuruCenter([]byte(retreatGuruCenterHTML))
	require.NoError(t, err)
	assert.Equal(t, "Carretera Tulum-Boca Paila Km 8, Tulum, Quintana Roo, Mexico", d.Address)
	assert.Contains(t, d.Description, "jungle eco retreat center")
	assert.NotContains(t, d.Description, "\n")
}

func TestParseRetreatGuruCenter_ShortDescriptionSkipped(t *testing.T) {
	html := `<html><body><div class="center-description">Too short.</div>
<article><p>A longer paragraph about the center that easily clears the fifty character minimum.</p></article></body></html>`

	d, err := ParseRetreatGuruCenter([]byte(html))
	require.NoError(t, err)
	assert.Empty(t, d.Address)
	assert.Equal(t, "A longer paragraph about the center that easily clears the fifty character minimum.", d.Description)
}

func TestResolve(t *testing.T) {
	base, _ := url.Parse("https://retreat.guru/search?topic=yoga")

	assert.Equal(t, "https://retreat.guru/centers/1-1/x", resolve(base, "/centers/1-1/x"))
	assert.Equal(t, "https://other.example/a", resolve(base, "https://other.example/a#frag"))
	assert.Empty(t, resolve(base, "  "))
	assert.Equal(t, "/relative", resolve(nil, "/relative"))
}
