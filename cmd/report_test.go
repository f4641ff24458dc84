package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/retreat-leads/internal/config"
	"github.com/sells-group/retreat-leads/internal/ledger"
	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/store"
)

func conf(n int) *int { return &n }

func testSummaries() []model.OrganizerSummary {
	return []model.OrganizerSummary{
		{Name: "Wild Heart Yoga", PriorityScore: 95, LeadType: model.LeadTravelingFacilitator,
			IsTravelingFacilitator: true, IsMultiPlatform: true, UniqueLocationCount: 2,
			Locations: []string{"Tulum", "Oaxaca"}, Platforms: []string{"retreat.guru", "bookretreats.com"},
			AI: &model.AISignal{Class: model.AIFacilitator, Confidence: conf(90)}},
		{Name: "Nomad Breath", PriorityScore: 80, LeadType: model.LeadTravelingFacilitator,
			IsTravelingFacilitator: true, UniqueLocationCount: 4,
			Locations: []string{"Tulum", "Sayulita", "Oaxaca", "Bacalar"}},
		{Name: "Sol Coaching", PriorityScore: 60, LeadType: model.LeadFacilitator},
		{Name: "Casa Verde", PriorityScore: 30, LeadType: model.LeadVenueOwner,
			AI: &model.AISignal{Class: model.AIVenueOwner}},
	}
}

func TestBuildReport(t *testing.T) {
	r := buildReport(7, testSummaries(), 10)

	assert.Equal(t, 7, r.Rows)
	assert.Equal(t, 4, r.Organizers)
	assert.Equal(t, 1, r.AIClasses[model.AIFacilitator])
	assert.Equal(t, 1, r.AIClasses[model.AIVenueOwner])
	assert.Equal(t, 2, r.Unclassified)
	assert.Equal(t, 2, r.LeadTypes[model.LeadTravelingFacilitator])
	assert.Equal(t, 1, r.MultiPlatform)
	assert.Equal(t, 2, r.High)
	assert.Equal(t, 1, r.Medium)
	assert.Equal(t, 1, r.Low)

	// Traveling facilitators are ranked by location count.
	require.Len(t, r.Traveling, 2)
	assert.Equal(t, "Nomad Breath", r.Traveling[0].Name)
	assert.Len(t, r.Top, 4)
}

func TestBuildReport_TopBound(t *testing.T) {
	r := buildReport(7, testSummaries(), 1)
	assert.Len(t, r.Top, 1)
	assert.Len(t, r.Traveling, 1)
	assert.Equal(t, "Wild Heart Yoga", r.Top[0].Name)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, buildReport(7, testSummaries(), 10))

	out := buf.String()
	assert.Contains(t, out, "Analyzed 7 leads from 4 unique organizers")
	assert.Contains(t, out, "HIGH priority (70+)")
	assert.Contains(t, out, "Nomad Breath")
	assert.Contains(t, out, "Tulum, Sayulita, Oaxaca +1 more")
	assert.Contains(t, out, "retreat.guru, bookretreats.com")
}

func TestAnalyzedPath(t *testing.T) {
	tests := []struct {
		path, format, want string
	}{
		{"leads_analyzed.csv", "csv", "leads_analyzed.csv"},
		{"leads_analyzed.csv", "xlsx", "leads_analyzed.xlsx"},
		{"out/leads.XLSX", "xlsx", "out/leads.XLSX"},
		{"leads_analyzed", "csv", "leads_analyzed.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, analyzedPath(tt.path, tt.format), tt.path)
	}
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", maskKey(""))
	assert.Equal(t, "****", maskKey("abc"))
	assert.Equal(t, "****wxyz", maskKey("sk-ant-1234wxyz"))
}

func TestDumpConfig_MasksKeys(t *testing.T) {
	c := config.Config{
		Google:    config.GoogleConfig{Key: "google-secret-1234"},
		Anthropic: config.AnthropicConfig{Key: "sk-ant-secret-5678", Model: "claude-test"},
		Scoring:   config.DefaultScoringConfig(),
	}

	var buf bytes.Buffer
	require.NoError(t, dumpConfig(&buf, c))
	assert.NotContains(t, buf.String(), "secret")
	assert.Equal(t, "google-secret-1234", c.Google.Key, "caller's config untouched")

	var back config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "****5678", back.Anthropic.Key)
	assert.Equal(t, "claude-test", back.Anthropic.Model)
	assert.Equal(t, 50, back.Scoring.Base)
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []store.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			Command:    "run",
			Source:     "https://retreat.guru/search?topic=yoga&country=mexico",
			Status:     store.RunStatusComplete,
			Scraped:    24,
			Appended:   19,
			StartedAt:  now,
			FinishedAt: now.Add(2 * time.Minute),
		},
		{
			ID:         "def12345-6789-0000-0000-000000000000",
			Command:    "classify",
			Status:     store.RunStatusFailed,
			Error:      "config: validation failed",
			StartedAt:  now.Add(-time.Hour),
			FinishedAt: now.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "abc12345")
	assert.NotContains(t, out, "abc12345-6789")
	assert.Contains(t, out, "2025-06-15 10:30")
	assert.Contains(t, out, "2m0s")
	assert.Contains(t, out, "failed: config: validation failed")
	assert.Contains(t, out, "https://retreat.guru/search?topic=yog...")
}

func TestComputeRunStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	runs := []store.Run{
		{Command: "run", Status: store.RunStatusComplete, Scraped: 10, Appended: 8, StartedAt: now.Add(-time.Hour), FinishedAt: now.Add(-time.Hour + 30*time.Second)},
		{Command: "run", Status: store.RunStatusComplete, Scraped: 5, Appended: 0, StartedAt: now.Add(-2 * time.Hour), FinishedAt: now.Add(-2*time.Hour + 90*time.Second)},
		{Command: "classify", Status: store.RunStatusFailed, StartedAt: now.Add(-3 * time.Hour)},
		{Command: "run", Status: store.RunStatusComplete, Scraped: 99, StartedAt: now.Add(-48 * time.Hour)},
	}

	s := computeRunStats(runs, 24*time.Hour, now)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Complete)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 15, s.Scraped)
	assert.Equal(t, 8, s.Appended)
	assert.Equal(t, 2, s.ByCommand["run"])
	assert.InDelta(t, 60.0, s.AvgDurSecs, 0.001)

	all := computeRunStats(runs, 0, now)
	assert.Equal(t, 4, all.Total)

	var buf bytes.Buffer
	formatRunStats(&buf, s)
	assert.Contains(t, buf.String(), "Avg duration")
	assert.Contains(t, buf.String(), "60.0s")
}

func TestFormatLedgerStats(t *testing.T) {
	batch := []model.Occurrence{
		{OrganizerName: "Wild Heart Yoga", LocationCity: "Tulum", SourcePlatform: model.PlatformRetreatGuru, EventURL: "https://retreat.guru/events/1"},
		{OrganizerName: "Wild Heart Yoga", LocationCity: "Oaxaca", SourcePlatform: model.PlatformBookRetreats, EventURL: "https://bookretreats.com/r/2"},
	}
	l, _ := ledger.AppendBatch(nil, batch)

	var buf bytes.Buffer
	formatLedgerStats(&buf, "leads_master.csv", l)

	out := buf.String()
	assert.Contains(t, out, "leads_master.csv")
	assert.Contains(t, out, "Unique organizers")
	assert.Contains(t, out, string(model.PlatformRetreatGuru))
}
