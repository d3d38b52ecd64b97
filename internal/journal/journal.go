// Package journal keeps a SQLite history of re-orientation runs so failed roles can be retried.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rig-reorient/internal/reorient"
)

// ErrNoRuns is returned when the journal holds no run yet.
var ErrNoRuns = errors.New("journal: no runs recorded")

type Journal struct {
	db *sql.DB
}

// Meta identifies the inputs of a run.
type Meta struct {
	Datablock string
	Mapping   string
	Output    string
}

// Run is one recorded pass.
type Run struct {
	ID         int64
	RecordedAt time.Time
	Meta
	Tally reorient.Tally
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: init %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			datablock TEXT NOT NULL,
			mapping TEXT NOT NULL,
			output TEXT NOT NULL,
			skipped INTEGER NOT NULL,
			smart INTEGER NOT NULL,
			dumb INTEGER NOT NULL,
			failed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			state TEXT NOT NULL,
			error TEXT NOT NULL,
			warnings TEXT NOT NULL,
			aim TEXT NOT NULL,
			pole TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS outcomes_state ON outcomes(run_id, state);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a report and returns the new run id.
func (j *Journal) Record(ctx context.Context, meta Meta, rep *reorient.Report) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	t := rep.Tally
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(recorded_at,datablock,mapping,output,skipped,smart,dumb,failed) VALUES(?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339Nano), meta.Datablock, meta.Mapping, meta.Output,
		t.Skipped, t.Smart, t.Dumb, t.Failed)
	if err != nil {
		return 0, fmt.Errorf("journal: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes(run_id,seq,role,source,target,state,error,warnings,aim,pole) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, o := range rep.Outcomes {
		warnings, err := json.Marshal(o.Warnings)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, id, i, o.Role, o.Source, o.Target, o.State.String(),
			o.Error, string(warnings), o.Aim, o.Pole); err != nil {
			return 0, fmt.Errorf("journal: insert %s: %w", o.Role, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LatestRun returns the most recent run, or ErrNoRuns.
func (j *Journal) LatestRun(ctx context.Context) (Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id,recorded_at,datablock,mapping,output,skipped,smart,dumb,failed FROM runs ORDER BY id DESC LIMIT 1`)
	return scanRun(row)
}

// GetRun returns one run by id.
func (j *Journal) GetRun(ctx context.Context, id int64) (Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id,recorded_at,datablock,mapping,output,skipped,smart,dumb,failed FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if errors.Is(err, ErrNoRuns) {
		return r, fmt.Errorf("journal: run %d not found", id)
	}
	return r, err
}

func scanRun(row *sql.Row) (Run, error) {
	var (
		r  Run
		at string
	)
	err := row.Scan(&r.ID, &at, &r.Datablock, &r.Mapping, &r.Output,
		&r.Tally.Skipped, &r.Tally.Smart, &r.Tally.Dumb, &r.Tally.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNoRuns
	}
	if err != nil {
		return r, err
	}
	r.RecordedAt, err = time.Parse(time.RFC3339Nano, at)
	return r, err
}

// Outcomes returns a run's outcomes in their original order.
func (j *Journal) Outcomes(ctx context.Context, runID int64) ([]reorient.Outcome, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT role,source,target,state,error,warnings,aim,pole FROM outcomes WHERE run_id=? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reorient.Outcome
	for rows.Next() {
		var (
			o        reorient.Outcome
			state    string
			warnings string
		)
		if err := rows.Scan(&o.Role, &o.Source, &o.Target, &state, &o.Error, &warnings, &o.Aim, &o.Pole); err != nil {
			return nil, err
		}
		if o.State, err = reorient.ParseState(state); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(warnings), &o.Warnings); err != nil {
			return nil, fmt.Errorf("journal: warnings of %s: %w", o.Role, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// FailedRoles lists the roles that failed in a run.
func (j *Journal) FailedRoles(ctx context.Context, runID int64) ([]string, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT role FROM outcomes WHERE run_id=? AND state=? ORDER BY seq`, runID, reorient.Failed.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}
