package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// writeWorkbook saves sheets in the given order; each sheet is a list of rows.
func writeWorkbook(t *testing.T, names []string, sheets map[string][][]string) string {
	t.Helper()
	wb := xlsx.NewFile()
	for _, name := range names {
		sheet, err := wb.AddSheet(name)
		require.NoError(t, err)
		for _, cells := range sheets[name] {
			row := sheet.AddRow()
			for _, v := range cells {
				row.AddCell().SetString(v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "population.xlsx")
	require.NoError(t, wb.Save(path))
	return path
}

func TestReadXLSXTable(t *testing.T) {
	path := writeWorkbook(t, []string{"Notes", "Counties"}, map[string][][]string{
		"Notes": {{"source", "ACS"}},
		"Counties": {
			{" id ", "Total population"},
			{"0500000US20055", "38470"},
			{"", ""},
			{"0500000US35013", "219561"},
		},
	})

	table, err := ReadXLSXTable(path, XLSXOptions{Sheet: "Counties"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Total population"}, table.Header)
	assert.Equal(t, [][]string{
		{"0500000US20055", "38470"},
		{"0500000US35013", "219561"},
	}, table.Rows)
}

func TestReadXLSXTable_FirstSheetAndSkipRows(t *testing.T) {
	path := writeWorkbook(t, []string{"Estimates", "Notes"}, map[string][][]string{
		"Estimates": {
			{"Annual Estimates of the Resident Population"},
			{"id", "Total population"},
			{"0500000US20055", "38470"},
		},
		"Notes": {{"ignored"}},
	})

	table, err := ReadXLSXTable(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Total population"}, table.Header)
	assert.Equal(t, [][]string{{"0500000US20055", "38470"}}, table.Rows)
}

func TestReadXLSXTable_SheetNotFound(t *testing.T) {
	path := writeWorkbook(t, []string{"Sheet1"}, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSXTable(path, XLSXOptions{Sheet: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadXLSXTable_Empty(t *testing.T) {
	path := writeWorkbook(t, []string{"Sheet1"}, map[string][][]string{"Sheet1": {}})

	_, err := ReadXLSXTable(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadXLSXTable_MissingFile(t *testing.T) {
	_, err := ReadXLSXTable(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx: open")
}

func TestReadTableFile_XLSX(t *testing.T) {
	path := writeWorkbook(t, []string{"Sheet1"}, map[string][][]string{
		"Sheet1": {{"title"}, {"id", "Total population"}, {"0500000US20055", "38470"}},
	})

	table, err := ReadTableFile(context.Background(), path, TableOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Total population"}, table.Header)
	assert.Len(t, table.Rows, 1)
}
