// Package fetcher downloads population tables over HTTP and parses them from
// CSV, XLSX, or Census API JSON into a header plus string rows.
package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Table is a parsed tabular source: one header row and the data rows below it.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableOptions selects how ReadTableFile parses a file.
type TableOptions struct {
	Delimiter rune   // CSV delimiter; '\t' is implied for .tsv
	Sheet     string // XLSX sheet name; first sheet when empty
	SkipRows  int    // CSV/XLSX title rows above the header
}

// ReadTableFile parses a population table, choosing the parser by extension:
// .csv/.txt (CSV), .tsv (tab separated), .xlsx, and .json (Census API rows).
func ReadTableFile(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".xlsx" {
		return ReadXLSXTable(path, XLSXOptions{Sheet: opts.Sheet, SkipRows: opts.SkipRows})
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	csvOpts := CSVOptions{Delimiter: opts.Delimiter, LazyQuotes: true, SkipRows: opts.SkipRows}
	switch ext {
	case ".csv", ".txt", "":
		return ReadCSVTable(ctx, f, csvOpts)
	case ".tsv":
		csvOpts.Delimiter = '\t'
		return ReadCSVTable(ctx, f, csvOpts)
	case ".json":
		return ReadCensusJSON(ctx, f)
	default:
		return nil, eris.Errorf("fetcher: unsupported table format %q", ext)
	}
}
