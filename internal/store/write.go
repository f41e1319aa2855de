package store

import (
	"context"
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// WriteRun inserts a run and its trace in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: rewriting a run ID is
// silently ignored, trace included.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord, trace []ir.StepEvent) error {
	inputJSON, err := marshalValues(rec.Input)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	outputJSON, err := marshalValues(rec.Output)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, algorithm, size, input, input_hash, output, outcome, comparisons, swaps,
		 elapsed_ns, events, dropped, trace_hash, error, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Algorithm.String(),
		rec.Size,
		inputJSON,
		rec.InputHash,
		outputJSON,
		string(rec.Outcome),
		int64(rec.Comparisons),
		int64(rec.Swaps),
		rec.Elapsed.Nanoseconds(),
		rec.Events,
		rec.Dropped,
		rec.TraceHash,
		rec.Error,
		rec.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if inserted == 0 || len(trace) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, kind, i, j, comparisons, swaps)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare events: %w", err)
	}
	defer stmt.Close()

	for _, e := range trace {
		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			e.Seq,
			e.Kind.String(),
			e.I,
			e.J,
			int64(e.Comparisons),
			int64(e.Swaps),
		); err != nil {
			return fmt.Errorf("write run: event %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its trace. Deleting a missing run is a no-op.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}
