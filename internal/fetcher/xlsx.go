package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects the sheet and header row of a workbook.
type XLSXOptions struct {
	Sheet    string // sheet name; the first sheet when empty
	SkipRows int    // title rows above the header
}

// ReadXLSXTable reads one sheet as a table. The first row after SkipRows is
// the header; rows with no visible content are dropped.
func ReadXLSXTable(path string, opts XLSXOptions) (*Table, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}
	sheet, err := pickSheet(wb, opts.Sheet)
	if err != nil {
		return nil, err
	}

	var t *Table
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.String()
		}
		switch {
		case t == nil:
			t = &Table{Header: trimCells(cells)}
		case !blankRow(cells):
			t.Rows = append(t.Rows, cells)
		}
	}
	if t == nil {
		return nil, eris.Errorf("xlsx: %s has no header row", path)
	}
	return t, nil
}

func pickSheet(wb *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name == "" {
		if len(wb.Sheets) == 0 {
			return nil, eris.New("xlsx: workbook has no sheets")
		}
		return wb.Sheets[0], nil
	}
	sheet, ok := wb.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", name)
	}
	return sheet, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
