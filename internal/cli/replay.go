package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	ID            string   `json:"id"`
	Algorithm     string   `json:"algorithm"`
	Outcome       string   `json:"outcome"`
	Events        int64    `json:"events"`
	TraceChecked  bool     `json:"trace_checked"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Re-run recorded runs and verify determinism",
		Long: `Re-run recorded runs on their stored input and verify they reproduce.

Each run is executed again with no delay and synchronous delivery. Cancelled
runs are stopped after the same number of events; faulted runs get a step
budget equal to their event count. The outcome, output, counters, and event
count must match the stored run, and so must the trace hash when a trace
was recorded without coalescing.

Exit codes:
  0 - All runs reproduced
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  sortviz replay --db ./runs.db
  sortviz replay --db ./runs.db 01929f3a-...
  sortviz replay --db ./runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "replay at most this many recent runs (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()
	logger := opts.Logger()

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	var runs []store.RunRecord
	if len(args) == 1 {
		rec, err := st.ReadRun(ctx, args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", args[0]))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.RunRecord{rec}
	} else {
		runs, err = st.ListRuns(ctx, store.RunFilter{Limit: opts.Limit})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, rec := range runs {
		rr, err := replayRun(ctx, rec, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", rec.ID), err)
		}
		result.Runs = append(result.Runs, rr)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if !result.AllDeterministic {
		if err := formatter.Failure(result, ErrCodeDeterminism, "determinism verification failed"); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return formatter.Success(result)
}

// replayRun executes rec's algorithm on its input again and diffs the
// rebuilt record against the stored one.
func replayRun(ctx context.Context, rec store.RunRecord, logger *slog.Logger) (ReplayRunResult, error) {
	rr := ReplayRunResult{
		ID:        rec.ID,
		Algorithm: rec.Algorithm.String(),
		Outcome:   string(rec.Outcome),
		Events:    rec.Events,
	}

	var (
		ctl   *engine.Controller
		trace []ir.StepEvent
	)
	stopAt := int64(-1)
	if rec.Outcome == ir.OutcomeCancelled {
		stopAt = rec.Events
	}
	opts := []engine.Option{
		engine.WithDelay(0),
		engine.WithSyncDelivery(),
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(rec.ID)),
		engine.WithObserver(engine.ObserverFuncs{
			Start: func(ir.RunInfo) {
				if stopAt == 0 {
					_ = ctl.RequestStop()
				}
			},
			Step: func(e ir.StepEvent) {
				trace = append(trace, e)
				if e.Seq == stopAt {
					_ = ctl.RequestStop()
				}
			},
		}),
	}
	if rec.Outcome == ir.OutcomeFaulted {
		opts = append(opts, engine.WithMaxSteps(rec.Events))
	}
	ctl = engine.New(rec.Input, opts...)

	if _, err := ctl.Start(ctx, rec.Algorithm); err != nil {
		return rr, err
	}
	res, err := ctl.Wait(ctx)
	if err != nil {
		return rr, err
	}

	var replayed []ir.StepEvent
	if rec.TraceHash != "" && rec.Dropped == 0 {
		replayed = trace
		rr.TraceChecked = true
	}
	got, err := store.NewRunRecord(res, replayed)
	if err != nil {
		return rr, err
	}

	rr.Mismatches = diffRecords(rec, got, rr.TraceChecked)
	rr.Deterministic = len(rr.Mismatches) == 0
	if !rr.Deterministic {
		logger.Warn("replay diverged", "run_id", rec.ID, "mismatches", len(rr.Mismatches))
	}
	return rr, nil
}

// diffRecords lists the observable differences between a stored run and
// its replay. Elapsed time and the error text are not compared.
func diffRecords(want, got store.RunRecord, checkTrace bool) []string {
	var diffs []string
	if want.Outcome != got.Outcome {
		diffs = append(diffs, fmt.Sprintf("outcome: stored %s, replayed %s", want.Outcome, got.Outcome))
	}
	if !slices.Equal(want.Output, got.Output) {
		diffs = append(diffs, fmt.Sprintf("output: stored %s, replayed %s", formatValues(want.Output), formatValues(got.Output)))
	}
	if want.Comparisons != got.Comparisons {
		diffs = append(diffs, fmt.Sprintf("comparisons: stored %d, replayed %d", want.Comparisons, got.Comparisons))
	}
	if want.Swaps != got.Swaps {
		diffs = append(diffs, fmt.Sprintf("swaps: stored %d, replayed %d", want.Swaps, got.Swaps))
	}
	if want.Events != got.Events {
		diffs = append(diffs, fmt.Sprintf("events: stored %d, replayed %d", want.Events, got.Events))
	}
	if want.InputHash != got.InputHash {
		diffs = append(diffs, "input hash changed")
	}
	if checkTrace && want.TraceHash != got.TraceHash {
		diffs = append(diffs, fmt.Sprintf("trace hash: stored %s, replayed %s", want.TraceHash, got.TraceHash))
	}
	return diffs
}

// WriteText prints one block per run and a verdict.
func (r ReplayResult) WriteText(w io.Writer, verbose bool) error {
	if r.TotalRuns == 0 {
		_, err := fmt.Fprintln(w, "No runs found in database.")
		return err
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", r.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range r.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s (%s, %s)\n", status, run.ID, run.Algorithm, run.Outcome)
		if verbose {
			fmt.Fprintf(w, "  Events: %d\n", run.Events)
			fmt.Fprintf(w, "  Trace checked: %v\n", run.TraceChecked)
		}
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	fmt.Fprintln(w)

	if r.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
	} else {
		fmt.Fprintln(w, "✗ Determinism verification failed")
	}
	return nil
}
