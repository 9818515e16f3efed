package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/sells-group/countymap/internal/county"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS county_runs (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	features      INTEGER NOT NULL DEFAULT 0,
	states        INTEGER NOT NULL DEFAULT 0,
	no_population INTEGER NOT NULL DEFAULT 0,
	records       INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS county_centroids (
	run_id         TEXT NOT NULL REFERENCES county_runs(id),
	seq            INTEGER NOT NULL,
	geoid          TEXT NOT NULL,
	state          TEXT NOT NULL,
	centroid       TEXT NOT NULL,
	population     INTEGER NOT NULL DEFAULT 0,
	has_population INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_county_runs_created_at ON county_runs(created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_county_centroids_geoid ON county_centroids(run_id, geoid);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a run header.
func (s *SQLiteStore) CreateRun(ctx context.Context, source string, diag county.Diagnostics) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		Source:       source,
		Features:     diag.Features,
		States:       diag.States,
		NoPopulation: diag.NoPopulation,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO county_runs (id, source, features, states, no_population, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Features, run.States, run.NoPopulation, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

// SaveRecords inserts records in one transaction and updates the run's count.
func (s *SQLiteStore) SaveRecords(ctx context.Context, runID string, records []county.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO county_centroids (run_id, seq, geoid, state, centroid, population, has_population) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert record")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, i, r.GEOID, r.State, r.Centroid, r.Population, r.HasPopulation); err != nil {
			return eris.Wrapf(err, "sqlite: insert record %s", r.GEOID)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE county_runs SET records = records + ? WHERE id = ?`, len(records), runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", runID)
	}
	if err := checkRowsAffected(res, runID); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit records")
}

const sqliteRunColumns = `id, source, features, states, no_population, records, created_at`

// GetRun returns a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteRunColumns+` FROM county_runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

// LatestRun returns the most recent run, or nil if there is none.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM county_runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest run")
	}
	return run, nil
}

// ListRuns returns runs newest first. limit <= 0 means 100.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM county_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// ListRecords returns a run's records in saved order.
func (s *SQLiteStore) ListRecords(ctx context.Context, runID string, filter RecordFilter) ([]county.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT geoid, state, centroid, population, has_population FROM county_centroids WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list records for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var records []county.Record
	for rows.Next() {
		var r county.Record
		if err := rows.Scan(&r.GEOID, &r.State, &r.Centroid, &r.Population, &r.HasPopulation); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list records iterate")
	}
	return filterRecords(records, filter), nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: run %s", runID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.Source, &r.Features, &r.States, &r.NoPopulation, &r.Records, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}
