package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lowir/internal/ir"
	"github.com/roach88/lowir/internal/runquery"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// RunFilter narrows ListRuns. Zero values match everything; Limit <= 0
// means no limit.
type RunFilter struct {
	Unit        string
	Fingerprint string
	Code        string // only runs that reported this diagnostic code
	InvalidOnly bool
	Limit       int
}

// Query converts f into a run query.
func (f RunFilter) Query() runquery.Query {
	q := runquery.Query{Limit: f.Limit}
	if f.Unit != "" {
		q = q.Where(runquery.Equals{Field: runquery.FieldUnit, Value: f.Unit})
	}
	if f.Fingerprint != "" {
		q = q.Where(runquery.Equals{Field: runquery.FieldFingerprint, Value: f.Fingerprint})
	}
	if f.Code != "" {
		q = q.Where(runquery.HasCode{Code: f.Code})
	}
	if f.InvalidOnly {
		q = q.Where(runquery.Equals{Field: runquery.FieldValid, Value: false})
	}
	return q
}

// ReadRun returns the run with the given id, including its diagnostics.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, unit, fingerprint, ir_version, valid, seq
		FROM runs
		WHERE id = ?
	`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	if rec.Diagnostics, err = s.readDiagnostics(ctx, id); err != nil {
		return ir.RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns runs matching f newest first.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, f RunFilter) ([]ir.RunRecord, error) {
	return s.QueryRuns(ctx, f.Query())
}

// QueryRuns executes a compiled run query and loads each run's diagnostics.
func (s *Store) QueryRuns(ctx context.Context, q runquery.Query) ([]ir.RunRecord, error) {
	query, args, err := runquery.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		if runs[i].Diagnostics, err = s.readDiagnostics(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// LatestRun returns the newest run of unit.
func (s *Store) LatestRun(ctx context.Context, unit string) (ir.RunRecord, error) {
	runs, err := s.ListRuns(ctx, RunFilter{Unit: unit, Limit: 1})
	if err != nil {
		return ir.RunRecord{}, err
	}
	if len(runs) == 0 {
		return ir.RunRecord{}, fmt.Errorf("latest run of %s: %w", unit, ErrNotFound)
	}
	return runs[0], nil
}

// MaxSeq returns the highest stored sequence number, or 0 for an empty store.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM runs").Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) readDiagnostics(ctx context.Context, runID string) ([]ir.DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, category, message, expr, expr_index, loop_id, cluster_id, expected, actual
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []ir.DiagnosticRecord{}
	for rows.Next() {
		var (
			d         ir.DiagnosticRecord
			loopID    sql.NullInt64
			clusterID sql.NullInt64
		)
		if err := rows.Scan(&d.Code, &d.Category, &d.Message, &d.Expr, &d.ExprIndex,
			&loopID, &clusterID, &d.Expected, &d.Actual); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.LoopID = intPtr(loopID)
		d.ClusterID = intPtr(clusterID)
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (ir.RunRecord, error) {
	var rec ir.RunRecord
	err := sc.Scan(&rec.ID, &rec.Unit, &rec.Fingerprint, &rec.IRVersion, &rec.Valid, &rec.Seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan run: %w", err)
	}
	return rec, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
