package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Census API geography columns. A county response carries both.
const (
	censusStateColumn  = "state"
	censusCountyColumn = "county"

	// GEOIDColumn is added to Census API tables that lack an id column.
	GEOIDColumn = "id"
)

// DecodeJSONArray decodes a JSON array streaming, sending each element to a channel.
// Both channels are closed when processing completes.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := json.NewDecoder(r)

		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			errCh <- eris.Wrap(err, "json: read opening token")
			return
		}

		delim, ok := tok.(json.Delim)
		if !ok || delim != '[' {
			errCh <- eris.Errorf("json: expected '[', got %v", tok)
			return
		}

		for decoder.More() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}

			var item T
			if err := decoder.Decode(&item); err != nil {
				errCh <- eris.Wrap(err, "json: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "json: context cancelled")
				return
			}
		}

		if _, err := decoder.Token(); err != nil && err != io.EOF {
			errCh <- eris.Wrap(err, "json: read closing token")
		}
	}()

	return outCh, errCh
}

// ReadCensusJSON reads a Census Data API response: a JSON array of string
// arrays whose first element is the header, e.g.
//
//	[["NAME","B01003_001E","state","county"],["Finney County, Kansas","38470","20","055"]]
//
// When the header has state and county columns but no id column, an id
// column holding state+county is appended so the table keys like a
// data.census.gov export.
func ReadCensusJSON(ctx context.Context, r io.Reader) (*Table, error) {
	rowCh, errCh := DecodeJSONArray[[]*string](ctx, r)

	var all [][]string
	for row := range rowCh {
		cells := make([]string, len(row))
		for i, c := range row {
			if c != nil {
				cells[i] = *c
			}
		}
		all = append(all, cells)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, eris.New("json: census response has no header row")
	}

	t := &Table{Header: all[0], Rows: all[1:]}

	stateIdx, countyIdx, idIdx := -1, -1, -1
	for i, h := range t.Header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case censusStateColumn:
			stateIdx = i
		case censusCountyColumn:
			countyIdx = i
		case GEOIDColumn:
			idIdx = i
		}
	}
	if idIdx >= 0 || stateIdx < 0 || countyIdx < 0 {
		return t, nil
	}

	t.Header = append(t.Header, GEOIDColumn)
	for i, row := range t.Rows {
		var id string
		if stateIdx < len(row) && countyIdx < len(row) {
			id = row[stateIdx] + row[countyIdx]
		}
		t.Rows[i] = append(row, id)
	}
	return t, nil
}
