package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const utf8BOM = "\ufeff"

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // 0 disables comments
	LazyQuotes bool
	TrimSpace  bool // trim every cell
	SkipRows   int  // records discarded before the first one sent
}

// StreamCSV parses r in a goroutine and sends each record on the returned
// channel. Rows may be ragged. A byte order mark on the first cell of the
// document is removed. The caller must drain rows; at most one error is sent,
// and both channels close when parsing stops.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rows := make(chan []string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(rows)
		defer close(errs)

		if err := streamCSV(ctx, newCSVReader(r, opts), opts, rows); err != nil {
			errs <- err
		}
	}()
	return rows, errs
}

func newCSVReader(r io.Reader, opts CSVOptions) *csv.Reader {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1
	return cr
}

func streamCSV(ctx context.Context, cr *csv.Reader, opts CSVOptions, out chan<- []string) error {
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "csv: context cancelled")
		}

		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "csv: read row")
		}

		if n == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], utf8BOM)
		}
		if n < opts.SkipRows {
			continue
		}
		if opts.TrimSpace {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}

		select {
		case out <- record:
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
	}
}

// ReadCSVTable reads a whole CSV document into a Table. The first record
// after SkipRows is the header; header cells are trimmed, data cells are
// kept verbatim unless TrimSpace is set.
func ReadCSVTable(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	rows, errs := StreamCSV(ctx, r, opts)

	var t *Table
	for row := range rows {
		if t == nil {
			t = &Table{Header: trimCells(row)}
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	if t == nil {
		return nil, eris.New("csv: table has no header row")
	}
	return t, nil
}

func trimCells(row []string) []string {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	return row
}
