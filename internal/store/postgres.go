package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/db"
	"github.com/sells-group/countymap/internal/tiger"
)

// Postgres table names.
const (
	pgCentroidsTable = "countymap.county_centroids"
	pgLatestTable    = "countymap.county_latest"

	defaultCopyBatch = 5000
)

var (
	centroidColumns = []string{"run_id", "seq", "geoid", "state", "centroid", "population", "has_population", "geom"}
	latestColumns   = []string{"geoid", "state", "centroid", "population", "has_population", "geom", "run_id", "updated_at"}
)

// PostgresStore implements Store on PostGIS. Besides per-run rows it keeps
// county_latest, one row per GEOID from the newest run that carried it.
type PostgresStore struct {
	pool      db.Pool
	closeFn   func()
	batchSize int
}

// NewPostgres connects to Postgres and returns a store.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close, batchSize: defaultCopyBatch}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, batchSize: defaultCopyBatch}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;
CREATE SCHEMA IF NOT EXISTS countymap;

CREATE TABLE IF NOT EXISTS countymap.county_runs (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	features      INTEGER NOT NULL DEFAULT 0,
	states        INTEGER NOT NULL DEFAULT 0,
	no_population INTEGER NOT NULL DEFAULT 0,
	records       INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS countymap.county_centroids (
	run_id         TEXT NOT NULL REFERENCES countymap.county_runs(id) ON DELETE CASCADE,
	seq            INTEGER NOT NULL,
	geoid          TEXT NOT NULL,
	state          TEXT NOT NULL,
	centroid       TEXT NOT NULL,
	population     BIGINT NOT NULL DEFAULT 0,
	has_population BOOLEAN NOT NULL DEFAULT false,
	geom           geometry(Point, 4326),
	PRIMARY KEY (run_id, seq),
	UNIQUE (run_id, geoid)
);

CREATE TABLE IF NOT EXISTS countymap.county_latest (
	geoid          TEXT PRIMARY KEY,
	state          TEXT NOT NULL,
	centroid       TEXT NOT NULL,
	population     BIGINT NOT NULL DEFAULT 0,
	has_population BOOLEAN NOT NULL DEFAULT false,
	geom           geometry(Point, 4326),
	run_id         TEXT NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_county_runs_created_at ON countymap.county_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_county_latest_geom ON countymap.county_latest USING GIST (geom);
`

// Migrate creates the schema, tables, and indexes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the pool when the store owns it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// CreateRun inserts a run header.
func (s *PostgresStore) CreateRun(ctx context.Context, source string, diag county.Diagnostics) (*Run, error) {
	run := &Run{
		ID:           uuid.New().String(),
		Source:       source,
		Features:     diag.Features,
		States:       diag.States,
		NoPopulation: diag.NoPopulation,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO countymap.county_runs (id, source, features, states, no_population, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Source, run.Features, run.States, run.NoPopulation, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

// SaveRecords COPYs a run's records in batches, refreshes county_latest, and
// updates the run's record count.
func (s *PostgresStore) SaveRecords(ctx context.Context, runID string, records []county.Record) error {
	log := zap.L().With(
		zap.String("component", "store.postgres"),
		zap.String("run_id", runID),
		zap.Int("records", len(records)),
	)

	now := time.Now().UTC()
	rows := make([][]any, 0, len(records))
	latest := make([][]any, 0, len(records))
	for i, r := range records {
		geom, err := recordWKB(r)
		if err != nil {
			return err
		}
		rows = append(rows, []any{runID, i, r.GEOID, r.State, r.Centroid, int64(r.Population), r.HasPopulation, geom})
		latest = append(latest, []any{r.GEOID, r.State, r.Centroid, int64(r.Population), r.HasPopulation, geom, runID, now})
	}

	batch := s.batchSize
	if batch <= 0 {
		batch = defaultCopyBatch
	}
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		if _, err := db.CopyFrom(ctx, s.pool, pgCentroidsTable, centroidColumns, rows[start:end]); err != nil {
			return eris.Wrapf(err, "postgres: save records %d-%d", start, end)
		}
		log.Debug("batch copied", zap.Int("batch_start", start), zap.Int("batch_end", end))
	}

	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        pgLatestTable,
		Columns:      latestColumns,
		ConflictKeys: []string{"geoid"},
	}, latest); err != nil {
		return eris.Wrap(err, "postgres: refresh latest")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE countymap.county_runs SET records = records + $1 WHERE id = $2`, len(records), runID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}

	log.Info("records saved")
	return nil
}

const pgRunColumns = `id, source, features, states, no_population, records, created_at`

// GetRun returns a run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgRunColumns+` FROM countymap.county_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

// LatestRun returns the most recent run, or nil if there is none.
func (s *PostgresStore) LatestRun(ctx context.Context) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgRunColumns+` FROM countymap.county_runs ORDER BY created_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest run")
	}
	return run, nil
}

// ListRuns returns runs newest first. limit <= 0 means 100.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgRunColumns+` FROM countymap.county_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// ListRecords returns a run's records in saved order.
func (s *PostgresStore) ListRecords(ctx context.Context, runID string, filter RecordFilter) ([]county.Record, error) {
	query := fmt.Sprintf(
		`SELECT geoid, state, centroid, population, has_population FROM %s WHERE run_id = $1 ORDER BY seq`,
		pgCentroidsTable)
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list records for run %s", runID)
	}
	defer rows.Close()

	var records []county.Record
	for rows.Next() {
		var r county.Record
		var pop int64
		if err := rows.Scan(&r.GEOID, &r.State, &r.Centroid, &pop, &r.HasPopulation); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		r.Population = int(pop)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list records iterate")
	}
	return filterRecords(records, filter), nil
}

// recordWKB encodes the record's centroid as a PostGIS point. Unparseable
// centroids store NULL.
func recordWKB(r county.Record) ([]byte, error) {
	p, err := r.Point()
	if err != nil {
		return nil, nil //nolint:nilerr
	}
	data, err := tiger.PointWKB(p.Lon, p.Lat)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: encode centroid for %s", r.GEOID)
	}
	return data, nil
}
