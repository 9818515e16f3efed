// Package dataset reads and writes the derived county dataset as tab-indented
// JSON (the form the map consumes) or as CSV.
package dataset

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/countymap/internal/county"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// FormatFromPath infers the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatJSON
}

// WriteJSON writes records as a JSON array indented with one tab per level,
// fields in geoid, state, centroid, population order.
func WriteJSON(w io.Writer, records []county.Record) error {
	if records == nil {
		records = []county.Record{}
	}
	data, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return eris.Wrap(err, "dataset: marshal json")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "dataset: write json")
	}
	return nil
}

// ReadJSON decodes a dataset written by WriteJSON. Records read back have
// HasPopulation set when Population is positive; a stored zero cannot be
// told apart from a missing count.
func ReadJSON(r io.Reader) ([]county.Record, error) {
	var records []county.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, eris.Wrap(err, "dataset: decode json")
	}
	markPopulation(records)
	return records, nil
}

// WriteCSV writes records with a geoid,state,centroid,population header.
func WriteCSV(w io.Writer, records []county.Record) error {
	if len(records) == 0 {
		header, err := csvutil.Header(county.Record{}, "csv")
		if err != nil {
			return eris.Wrap(err, "dataset: csv header")
		}
		_, err = io.WriteString(w, strings.Join(header, ",")+"\n")
		return eris.Wrap(err, "dataset: write csv")
	}
	data, err := csvutil.Marshal(records)
	if err != nil {
		return eris.Wrap(err, "dataset: marshal csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "dataset: write csv")
	}
	return nil
}

// ReadCSV decodes a dataset written by WriteCSV.
func ReadCSV(r io.Reader) ([]county.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read csv")
	}
	var records []county.Record
	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrap(err, "dataset: unmarshal csv")
	}
	markPopulation(records)
	return records, nil
}

// Save writes records to path in the given format ("" infers it from the
// extension), creating parent directories as needed.
func Save(path, format string, records []county.Record) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "dataset: create dir for %s", path)
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = WriteJSON(&buf, records)
	case FormatCSV:
		err = WriteCSV(&buf, records)
	default:
		return eris.Errorf("dataset: unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "dataset: write %s", path)
	}
	return nil
}

// Load reads records from path, inferring the format from the extension.
func Load(path string) ([]county.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	if FormatFromPath(path) == FormatCSV {
		return ReadCSV(f)
	}
	return ReadJSON(f)
}

func markPopulation(records []county.Record) {
	for i := range records {
		records[i].HasPopulation = records[i].Population > 0
	}
}
