package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/sortviz/internal/ir"
)

const runColumns = `id, algorithm, size, input, input_hash, output, outcome, comparisons, swaps,
	elapsed_ns, events, dropped, trace_hash, error, engine_version`

// RunFilter narrows ListRuns. Zero values match everything.
type RunFilter struct {
	Algorithm ir.Algorithm
	Outcome   ir.Outcome
	InputHash string
	Limit     int
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs newest first. Run IDs are UUIDv7, so ordering by
// id COLLATE BINARY DESC is ordering by start time.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListRuns(ctx context.Context, f RunFilter) ([]RunRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.Algorithm.Valid() {
		where = append(where, "algorithm = ?")
		args = append(args, f.Algorithm.String())
	}
	if f.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if f.InputHash != "" {
		where = append(where, "input_hash = ?")
		args = append(args, f.InputHash)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id COLLATE BINARY DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
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
	return runs, nil
}

// ReadEvents returns the recorded trace of a run ordered by seq.
// Returns an empty slice (not nil) if no trace was recorded.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]ir.StepEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, i, j, comparisons, swaps
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.StepEvent{}
	for rows.Next() {
		var (
			e                  ir.StepEvent
			kind               string
			comparisons, swaps int64
		)
		if err := rows.Scan(&e.Seq, &kind, &e.I, &e.J, &comparisons, &swaps); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Kind, err = ir.ParseEventKind(kind); err != nil {
			return nil, fmt.Errorf("scan event %d: %w", e.Seq, err)
		}
		e.Comparisons = uint64(comparisons)
		e.Swaps = uint64(swaps)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec                RunRecord
		algorithm, outcome string
		input, output      string
		comparisons, swaps int64
		elapsedNS          int64
	)
	err := row.Scan(
		&rec.ID,
		&algorithm,
		&rec.Size,
		&input,
		&rec.InputHash,
		&output,
		&outcome,
		&comparisons,
		&swaps,
		&elapsedNS,
		&rec.Events,
		&rec.Dropped,
		&rec.TraceHash,
		&rec.Error,
		&rec.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	if rec.Algorithm, err = ir.ParseAlgorithm(algorithm); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", rec.ID, err)
	}
	if rec.Outcome, err = ir.ParseOutcome(outcome); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", rec.ID, err)
	}
	if rec.Input, err = unmarshalValues(input); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", rec.ID, err)
	}
	if rec.Output, err = unmarshalValues(output); err != nil {
		return RunRecord{}, fmt.Errorf("scan run %s: %w", rec.ID, err)
	}
	rec.Comparisons = uint64(comparisons)
	rec.Swaps = uint64(swaps)
	rec.Elapsed = time.Duration(elapsedNS)
	return rec, nil
}
