package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// sheetName is the worksheet ledgers are written to and read from.
const sheetName = "leads"

// IsXLSX reports whether path names a spreadsheet rather than a CSV file.
func IsXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// LoadXLSX reads a ledger from the "leads" sheet of a workbook, falling
// back to the first sheet. The same empty-input and legacy-header rules as
// Load apply.
func LoadXLSX(path string) (*Ledger, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		zap.L().Info("ledger: no existing ledger, starting fresh", zap.String("path", path))
		return New(), nil
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ledger: open workbook %s", path)
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		if len(f.Sheets) == 0 {
			return New(), nil
		}
		sheet = f.Sheets[0]
	}
	if len(sheet.Rows) == 0 {
		return New(), nil
	}

	l := newWithHeader(rowToStrings(sheet.Rows[0]))
	restamped := 0
	for i, row := range sheet.Rows[1:] {
		record := rowToStrings(row)
		if blank(record) {
			continue
		}
		changed, err := l.addRecord(record, i+2)
		if err != nil {
			return nil, eris.Wrapf(err, "ledger: parse %s", path)
		}
		if changed {
			restamped++
		}
	}

	logRestamped(restamped)
	return l, nil
}

// SaveXLSX writes l as a single-sheet workbook. The header row is the
// column union; rows lacking a column get an empty cell.
func (l *Ledger) SaveXLSX(path string) error {
	l.Reconcile()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "ledger: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range l.columns {
		header.AddCell().SetString(col)
	}
	for i := range l.rows {
		r := sheet.AddRow()
		for _, col := range l.columns {
			r.AddCell().SetString(l.rows[i].Get(col))
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "ledger: save workbook %s", path)
	}
	zap.L().Debug("ledger: saved workbook",
		zap.String("path", path),
		zap.Int("rows", l.Len()),
	)
	return nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
