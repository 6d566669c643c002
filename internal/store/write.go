package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/lowir/internal/ir"
)

// WriteRun inserts a run and its diagnostics in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an existing run
// id again leaves the stored run and its diagnostics untouched.
func (s *Store) WriteRun(ctx context.Context, rec ir.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("write run: empty run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, unit, fingerprint, ir_version, valid, error_count, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Unit,
		rec.Fingerprint,
		rec.IRVersion,
		rec.Valid,
		len(rec.Diagnostics),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run %s: %w", rec.ID, err)
	}
	if n == 0 {
		return tx.Commit()
	}

	for i, d := range rec.Diagnostics {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics
			(run_id, ordinal, code, category, message, expr, expr_index, loop_id, cluster_id, expected, actual)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			i,
			d.Code,
			d.Category,
			d.Message,
			d.Expr,
			d.ExprIndex,
			nullInt(d.LoopID),
			nullInt(d.ClusterID),
			d.Expected,
			d.Actual,
		)
		if err != nil {
			return fmt.Errorf("write run %s: diagnostic %d: %w", rec.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", rec.ID, err)
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
