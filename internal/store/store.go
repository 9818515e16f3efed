// Package store persists derived county datasets. Each build is a run; the
// records of a run are immutable once saved.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
)

// ErrNotFound is wrapped by lookups of a missing run.
var ErrNotFound = errors.New("not found")

// Run describes one build of the dataset.
type Run struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"` // shape input the run was built from
	Features     int       `json:"features"`
	States       int       `json:"states"`
	NoPopulation int       `json:"no_population"`
	Records      int       `json:"records"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordFilter narrows ListRecords.
type RecordFilter struct {
	State      string // exact 2-digit state code
	Contiguous bool   // only records InScope for the map
	Limit      int    // 0 = no limit
}

// Store defines persistence for dataset runs.
type Store interface {
	// CreateRun stores a run header and returns it with ID and CreatedAt set.
	CreateRun(ctx context.Context, source string, diag county.Diagnostics) (*Run, error)
	// SaveRecords stores the records of a run in order.
	SaveRecords(ctx context.Context, runID string, records []county.Record) error
	// GetRun returns the run or an error wrapping ErrNotFound.
	GetRun(ctx context.Context, runID string) (*Run, error)
	// LatestRun returns the newest run, or nil when none exists.
	LatestRun(ctx context.Context) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	// ListRecords returns a run's records in the order they were saved.
	ListRecords(ctx context.Context, runID string, filter RecordFilter) ([]county.Record, error)

	Migrate(ctx context.Context) error
	Close() error
}

// SaveResult creates a run for a join result and stores its records.
func SaveResult(ctx context.Context, s Store, source string, res *county.Result) (*Run, error) {
	run, err := s.CreateRun(ctx, source, res.Diagnostics)
	if err != nil {
		return nil, err
	}
	if err := s.SaveRecords(ctx, run.ID, res.Records); err != nil {
		return nil, err
	}
	run.Records = len(res.Records)
	return run, nil
}

func filterRecords(records []county.Record, f RecordFilter) []county.Record {
	var out []county.Record
	for _, r := range records {
		if f.State != "" && r.State != f.State {
			continue
		}
		if f.Contiguous && !geo.InScope(r.State) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}
