package ledger

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/identity"
	"github.com/sells-group/retreat-leads/internal/model"
)

// Load reads a ledger CSV; .xlsx paths go through LoadXLSX. A missing,
// zero-byte, whitespace-only or header-only file yields an empty ledger. A
// file that cannot be parsed as CSV is a structural failure and returns an
// error: starting fresh there would overwrite the history on the next save.
func Load(path string) (*Ledger, error) {
	if IsXLSX(path) {
		return LoadXLSX(path)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		zap.L().Info("ledger: no existing ledger, starting fresh", zap.String("path", path))
		return New(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		zap.L().Warn("ledger: file is empty, starting fresh", zap.String("path", path))
		return New(), nil
	}

	l, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: parse %s", path)
	}
	return l, nil
}

// Read parses a ledger from r. Header names from earlier pipeline versions
// are mapped to their current names, and every row's organizer key is
// recomputed from its name.
func Read(r io.Reader) (*Ledger, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ledger: read header")
	}
	l := newWithHeader(header)

	restamped := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "ledger: read row %d", line)
		}
		changed, err := l.addRecord(record, line)
		if err != nil {
			return nil, err
		}
		if changed {
			restamped++
		}
	}

	logRestamped(restamped)
	return l, nil
}

// newWithHeader starts a ledger whose columns are the reconciled header
// followed by any missing core columns.
func newWithHeader(header []string) *Ledger {
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	cols := reconcileHeader(header)

	l := &Ledger{colSet: make(map[string]struct{}, len(cols)), header: cols}
	l.addColumns(cols)
	l.addColumns(model.CoreColumns)
	return l
}

// addRecord appends one data record laid out in header order. It reports
// whether a non-empty organizer key had to be recomputed.
func (l *Ledger) addRecord(record []string, line int) (bool, error) {
	if len(record) > len(l.header) {
		return false, eris.Errorf("ledger: row %d has %d fields, header has %d", line, len(record), len(l.header))
	}

	var row model.Occurrence
	for i, col := range l.header {
		v := ""
		if i < len(record) {
			v = record[i]
		}
		row.Set(col, v)
	}

	restamped := false
	key := identity.Resolve(row.OrganizerName)
	if row.OrganizerKey != key {
		restamped = row.OrganizerKey != ""
		row.OrganizerKey = key
	}
	l.rows = append(l.rows, row)
	return restamped, nil
}

func logRestamped(n int) {
	if n > 0 {
		zap.L().Warn("ledger: organizer keys did not match names and were recomputed",
			zap.Int("rows", n),
		)
	}
}

// reconcileHeader maps legacy header names to current ones. A legacy name
// whose target is already present keeps its original name so neither
// column is lost; repeated names get a numeric suffix.
func reconcileHeader(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	used := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := h
		if target, ok := model.LegacyColumnAliases[h]; ok && !present[target] {
			name = target
		}
		if n := used[name]; n > 0 {
			used[name]++
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			used[name] = 1
		}
		out[i] = name
	}
	return out
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}

// Write renders l as CSV to w. Rows lacking a column get an empty cell.
func (l *Ledger) Write(w io.Writer) error {
	l.Reconcile()

	cw := csv.NewWriter(w)
	if err := cw.Write(l.columns); err != nil {
		return eris.Wrap(err, "ledger: write header")
	}
	record := make([]string, len(l.columns))
	for i := range l.rows {
		for j, col := range l.columns {
			record[j] = l.rows[i].Get(col)
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "ledger: write row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "ledger: flush")
}

// Save writes l to path through a temporary file in the same directory, so
// a failed write never truncates the existing ledger. .xlsx paths are
// written as a workbook.
func (l *Ledger) Save(path string) error {
	if IsXLSX(path) {
		return l.SaveXLSX(path)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return eris.Wrap(err, "ledger: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	bw := bufio.NewWriter(tmp)
	if err := l.Write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return eris.Wrap(err, "ledger: flush temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "ledger: close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "ledger: replace %s", path)
	}

	zap.L().Debug("ledger: saved",
		zap.String("path", path),
		zap.Int("rows", l.Len()),
		zap.Int("columns", len(l.columns)),
	)
	return nil
}
