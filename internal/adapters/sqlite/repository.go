// Package sqlite archives report runs so earlier results can be listed and
// compared. The schema is created on open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/csg33k/modreport/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	input_path    TEXT     NOT NULL,
	output_dir    TEXT     NOT NULL,
	generated_at  DATETIME NOT NULL,
	year_min      INTEGER  NOT NULL,
	year_max      INTEGER  NOT NULL,
	total_rows    INTEGER  NOT NULL,
	accepted      INTEGER  NOT NULL,
	rejected      INTEGER  NOT NULL
);
CREATE TABLE IF NOT EXISTS run_groups (
	run_id  INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	area    TEXT    NOT NULL,
	plant   TEXT    NOT NULL,
	year    INTEGER NOT NULL,
	kind    TEXT    NOT NULL,
	count   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_rejections (
	run_id  INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	row_no  INTEGER NOT NULL,
	line_no INTEGER NOT NULL,
	reason  TEXT    NOT NULL,
	field   TEXT    NOT NULL,
	value   TEXT    NOT NULL,
	detail  TEXT    NOT NULL
);`

// Repository satisfies ports.RunArchive.
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the SQLite archive at dsn.
func New(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// ── Runs ──────────────────────────────────────────────────────────────────────

// SaveRun stores the run with its groups and rejections in one transaction.
func (r *Repository) SaveRun(ctx context.Context, rep *domain.Report) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	s := rep.Summary
	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			input_path, output_dir, generated_at, year_min, year_max,
			total_rows, accepted, rejected
		) VALUES (?,?,?,?,?,?,?,?)`,
		rep.InputPath, rep.OutputDir, rep.GeneratedAt, rep.Years.Min, rep.Years.Max,
		s.TotalRows, s.Accepted, s.Rejected,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if rep.Table != nil {
		for _, g := range rep.Table.Groups {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO run_groups (run_id, area, plant, year, kind, count)
				VALUES (?,?,?,?,?,?)`,
				id, string(g.Area), g.Plant, g.Year, string(g.Kind), g.Count,
			); err != nil {
				return 0, err
			}
		}
	}
	for _, rj := range rep.Rejections {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_rejections (run_id, row_no, line_no, reason, field, value, detail)
			VALUES (?,?,?,?,?,?,?)`,
			id, rj.Row, rj.Line, string(rj.Reason), rj.Field, rj.Value, rj.Detail,
		); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns archived runs, newest first.
func (r *Repository) ListRuns(ctx context.Context) ([]domain.RunSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, input_path, generated_at, total_rows, accepted, rejected
		FROM runs ORDER BY generated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.RunSummary
	for rows.Next() {
		var s domain.RunSummary
		if err := rows.Scan(&s.ID, &s.InputPath, &s.GeneratedAt, &s.TotalRows, &s.Accepted, &s.Rejected); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetRun returns one archived run, or domain.ErrRunNotFound.
func (r *Repository) GetRun(ctx context.Context, runID int64) (domain.RunSummary, error) {
	var s domain.RunSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT id, input_path, generated_at, total_rows, accepted, rejected
		FROM runs WHERE id=?`, runID,
	).Scan(&s.ID, &s.InputPath, &s.GeneratedAt, &s.TotalRows, &s.Accepted, &s.Rejected)
	if errors.Is(err, sql.ErrNoRows) {
		return s, fmt.Errorf("run %d: %w", runID, domain.ErrRunNotFound)
	}
	return s, err
}

// GetGroups returns the aggregation groups stored for a run, in stored order.
func (r *Repository) GetGroups(ctx context.Context, runID int64) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT area, plant, year, kind, count
		FROM run_groups WHERE run_id=? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Group
	for rows.Next() {
		var g domain.Group
		var area, kind string
		if err := rows.Scan(&area, &g.Plant, &g.Year, &kind, &g.Count); err != nil {
			return nil, err
		}
		g.Area, g.Kind = domain.Area(area), domain.Kind(kind)
		list = append(list, g)
	}
	return list, rows.Err()
}

// ── Rejections ────────────────────────────────────────────────────────────────

func (r *Repository) GetRejections(ctx context.Context, runID int64) ([]domain.Rejection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT row_no, line_no, reason, field, value, detail
		FROM run_rejections WHERE run_id=? ORDER BY row_no`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Rejection
	for rows.Next() {
		var rj domain.Rejection
		var reason string
		if err := rows.Scan(&rj.Row, &rj.Line, &reason, &rj.Field, &rj.Value, &rj.Detail); err != nil {
			return nil, err
		}
		rj.Reason = domain.Reason(reason)
		list = append(list, rj)
	}
	return list, rows.Err()
}
