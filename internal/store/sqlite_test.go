package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/retreat-leads/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache", "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var _ Store = (*SQLiteStore)(nil)

func sampleAnalysis() model.AIAnalysis {
	return model.AIAnalysis{
		Classification:        model.AIFacilitator,
		Confidence:            85,
		ProfileSummary:        "Traveling yoga teacher",
		OutreachTalkingPoints: []string{"runs 4 retreats a year"},
		GreenFlags:            []string{"no venue of their own"},
	}
}

// --- Classification cache ---

func TestSQLite_Classification_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetClassification(ctx, "abc123def456", sampleAnalysis(), time.Hour))

	got, err := st.GetClassification(ctx, "abc123def456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleAnalysis(), *got)
}

func TestSQLite_Classification_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetClassification(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Classification_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	require.NoError(t, st.SetClassification(ctx, "k", sampleAnalysis(), 30*24*time.Hour))

	now = now.Add(29 * 24 * time.Hour)
	got, err := st.GetClassification(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(2 * 24 * time.Hour)
	got, err = st.GetClassification(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := st.DeleteExpiredClassifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_Classification_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetClassification(ctx, "k", sampleAnalysis(), time.Hour))
	updated := sampleAnalysis()
	updated.Classification = model.AIVenueOwner
	require.NoError(t, st.SetClassification(ctx, "k", updated, time.Hour))

	got, err := st.GetClassification(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.AIVenueOwner, got.Classification)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.SetClassification(ctx, "k", sampleAnalysis(), time.Hour))
	require.NoError(t, st.Close())

	st, err = NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	got, err := st.GetClassification(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// --- Runs ---

func TestSQLite_Runs_RecordAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.RecordRun(ctx, Run{
		ID: "run-1", Command: "run", Source: "retreat.guru", Status: RunStatusComplete,
		Scraped: 10, Appended: 10, StartedAt: base, FinishedAt: base.Add(time.Minute),
	}))
	require.NoError(t, st.RecordRun(ctx, Run{
		ID: "run-2", Command: "classify", Status: RunStatusFailed, Error: "boom",
		StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour),
	}))

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, 10, runs[1].Appended)
	assert.Equal(t, base, runs[1].StartedAt)

	runs, err = st.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLite_Runs_RequiresID(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.RecordRun(context.Background(), Run{Command: "run"})
	assert.Error(t, err)
}
