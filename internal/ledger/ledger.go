// Package ledger is the append-only table of every scraped occurrence across
// all pipeline runs.
package ledger

import (
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/identity"
	"github.com/sells-group/retreat-leads/internal/model"
)

// Ledger holds occurrence rows and the union of every column any row, past
// or present, has carried. Rows are kept in append order.
type Ledger struct {
	columns []string
	colSet  map[string]struct{}
	rows    []model.Occurrence

	// header is the column layout of the file the ledger was read from.
	header []string
}

// New returns an empty ledger with the core columns.
func New() *Ledger {
	l := &Ledger{colSet: make(map[string]struct{})}
	l.addColumns(model.CoreColumns)
	return l
}

// Len returns the number of rows.
func (l *Ledger) Len() int { return len(l.rows) }

// Columns returns the column union in header order.
func (l *Ledger) Columns() []string {
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

// HasColumn reports whether col is part of the column union.
func (l *Ledger) HasColumn(col string) bool {
	_, ok := l.colSet[col]
	return ok
}

// Rows returns the ledger's rows. Enrichment passes mutate rows in place
// through this slice; call Reconcile (Save does) to fold any new columns into
// the header.
func (l *Ledger) Rows() []model.Occurrence { return l.rows }

// Reconcile extends the column union with any enrichment column a row
// carries that the header does not yet list. It returns the added columns.
func (l *Ledger) Reconcile() []string {
	var added []string
	for i := range l.rows {
		for _, k := range l.rows[i].Attrs.Keys() {
			if !l.HasColumn(k) {
				l.addColumn(k)
				added = append(added, k)
			}
		}
	}
	return added
}

// Keys returns the distinct organizer keys in first-encounter order.
func (l *Ledger) Keys() []string {
	seen := make(map[string]struct{}, len(l.rows))
	var keys []string
	for i := range l.rows {
		k := l.rows[i].OrganizerKey
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func (l *Ledger) addColumn(col string) {
	if _, ok := l.colSet[col]; ok {
		return
	}
	l.colSet[col] = struct{}{}
	l.columns = append(l.columns, col)
}

func (l *Ledger) addColumns(cols []string) {
	for _, c := range cols {
		l.addColumn(c)
	}
}

// AppendStats reports what an AppendBatch did.
type AppendStats struct {
	Appended int
	// OverlappingKeys counts distinct organizer keys present both in the
	// batch and in the ledger before the append. Informational only.
	OverlappingKeys int
	NewColumns      []string
}

// AppendBatch returns a new ledger holding every existing row followed by
// every batch row. Batch rows are stamped with their organizer key; rows are
// never merged or overwritten, and the column set is the union of both
// sides. A nil existing ledger is treated as empty.
func AppendBatch(existing *Ledger, batch []model.Occurrence) (*Ledger, AppendStats) {
	if existing == nil {
		existing = New()
	}

	merged := &Ledger{
		colSet: make(map[string]struct{}, len(existing.colSet)),
		rows:   make([]model.Occurrence, 0, len(existing.rows)+len(batch)),
	}
	merged.addColumns(existing.columns)
	merged.addColumns(model.CoreColumns)

	existingKeys := make(map[string]struct{}, len(existing.rows))
	for i := range existing.rows {
		existingKeys[existing.rows[i].OrganizerKey] = struct{}{}
		merged.rows = append(merged.rows, existing.rows[i].Clone())
	}

	stats := AppendStats{Appended: len(batch)}
	overlap := make(map[string]struct{})
	for i := range batch {
		row := batch[i].Clone()
		row.OrganizerKey = identity.Resolve(row.OrganizerName)
		if _, ok := existingKeys[row.OrganizerKey]; ok {
			overlap[row.OrganizerKey] = struct{}{}
		}
		for _, k := range row.Attrs.Keys() {
			if !merged.HasColumn(k) {
				merged.addColumn(k)
				stats.NewColumns = append(stats.NewColumns, k)
			}
		}
		merged.rows = append(merged.rows, row)
	}
	stats.OverlappingKeys = len(overlap)

	if stats.OverlappingKeys > 0 {
		zap.L().Info("ledger: organizers already present",
			zap.Int("overlapping_keys", stats.OverlappingKeys),
		)
	}

	return merged, stats
}
