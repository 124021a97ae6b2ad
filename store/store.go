/*
Package store keeps experiment results in SQLite so sweeps can be compared
across runs and seeds.
*/
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/theapemachine/qec"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a single-writer SQLite handle.
type Store struct {
	db *sql.DB
}

// Run is one stored experiment.
type Run struct {
	ID        string
	Kind      string
	CreatedAt time.Time
	Seed      uint64
}

/*
Open creates or opens the database at path and applies the schema. The
database runs in WAL mode with foreign keys enforced. Use ":memory:" for a
throwaway store.
*/
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to database")
	}

	// SQLite has one writer; more connections only buy SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "applying schema")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "executing %q", pragma)
		}
	}

	return nil
}

// SaveSweep records a sweep summary under a new run and returns the run id.
func (s *Store) SaveSweep(ctx context.Context, seed uint64, summary *qec.SweepSummary) (string, error) {
	var runID string

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if runID, err = insertRun(ctx, tx, summary.Kind, seed); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sweep_results (run_id, trials, mismatches, all_matched)
			VALUES (?, ?, ?, ?)
		`, runID, summary.Trials, len(summary.Mismatches), summary.AllMatched())
		return errors.Wrap(err, "inserting sweep result")
	})

	return runID, err
}

// SaveNoise records a series of noise comparisons under one run.
func (s *Store) SaveNoise(ctx context.Context, kind string, seed uint64, reports []qec.NoiseReport) (string, error) {
	var runID string

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if runID, err = insertRun(ctx, tx, kind, seed); err != nil {
			return err
		}

		for i, r := range reports {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO noise_results (run_id, seq, num_trials, p, rounds, single_rate, multi_rate)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, runID, i, r.NumTrials, r.P, r.Rounds, r.SingleRate, r.MultiRate); err != nil {
				return errors.Wrapf(err, "inserting noise result %d", i)
			}
		}
		return nil
	})

	return runID, err
}

// NoiseResults returns a run's noise comparisons in the order they were saved.
func (s *Store) NoiseResults(ctx context.Context, runID string) ([]qec.NoiseReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT num_trials, p, rounds, single_rate, multi_rate
		FROM noise_results
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying noise results")
	}
	defer rows.Close()

	var reports []qec.NoiseReport
	for rows.Next() {
		var r qec.NoiseReport
		if err := rows.Scan(&r.NumTrials, &r.P, &r.Rounds, &r.SingleRate, &r.MultiRate); err != nil {
			return nil, errors.Wrap(err, "scanning noise result")
		}
		reports = append(reports, r)
	}

	return reports, errors.Wrap(rows.Err(), "iterating noise results")
}

// Runs lists stored runs of one kind, oldest first.
func (s *Store) Runs(ctx context.Context, kind string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, created_at, seed
		FROM runs
		WHERE kind = ?
		ORDER BY created_at, id
	`, kind)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created int64
			seed    int64
		)
		if err := rows.Scan(&run.ID, &run.Kind, &created, &seed); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		run.CreatedAt = time.UnixMilli(created)
		run.Seed = uint64(seed)
		runs = append(runs, run)
	}

	return runs, errors.Wrap(rows.Err(), "iterating runs")
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "committing transaction")
}

func insertRun(ctx context.Context, tx *sql.Tx, kind string, seed uint64) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generating run id")
	}

	// sqlite integers are signed; the seed round-trips through int64 bit for bit.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, created_at, seed)
		VALUES (?, ?, ?, ?)
	`, id.String(), kind, time.Now().UnixMilli(), int64(seed)); err != nil {
		return "", errors.Wrap(err, "inserting run")
	}

	return id.String(), nil
}
