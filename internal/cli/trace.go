package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Kind     string // optional - filter to one event kind
	Limit    int
}

// TraceEvent is one recorded step in the trace output.
type TraceEvent struct {
	Seq         int64  `json:"seq"`
	Kind        string `json:"kind"`
	I           int    `json:"i"`
	J           int    `json:"j"`
	Comparisons uint64 `json:"comparisons"`
	Swaps       uint64 `json:"swaps"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      RunSummary   `json:"run"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the recorded trace.
type TraceStats struct {
	TotalEvents int  `json:"total_events"`
	Compares    int  `json:"compares"`
	Mutations   int  `json:"mutations"`
	Complete    bool `json:"complete"`   // ends with a done event
	HashMatches bool `json:"hash_match"` // recomputed trace hash equals the stored one
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the recorded steps of a run",
		Long: `Show the step events recorded for a run.

Runs are recorded with their full trace when started with --traces. The trace
hash is recomputed from the stored events and compared with the one stored
with the run.

Examples:
  sortviz trace --db ./runs.db 01929f3a-...
  sortviz trace --db ./runs.db 01929f3a-... --kind mutate
  sortviz trace --db ./runs.db 01929f3a-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show events of this kind (compare, mutate, done)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many events (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	var kind ir.EventKind
	if opts.Kind != "" {
		k, err := ir.ParseEventKind(opts.Kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --kind", err)
		}
		kind = k
	}

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.Logger().Error("error closing database", "error", closeErr)
		}
	}()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := context.Background()
	rec, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		msg := fmt.Sprintf("run not found: %s", runID)
		if err := formatter.Error(ErrCodeNotFound, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadEvents(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result, err := buildTrace(rec, events, kind, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash trace", err)
	}
	return formatter.Success(result)
}

// buildTrace computes statistics over all events, then applies the kind
// filter and limit to the timeline.
func buildTrace(rec store.RunRecord, events []ir.StepEvent, kind ir.EventKind, limit int) (TraceResult, error) {
	result := TraceResult{
		Run:      summarize(rec),
		Timeline: []TraceEvent{},
		Stats:    TraceStats{TotalEvents: len(events)},
	}

	for _, e := range events {
		switch e.Kind {
		case ir.EventCompare:
			result.Stats.Compares++
		case ir.EventMutate:
			result.Stats.Mutations++
		}
	}
	if n := len(events); n > 0 && events[n-1].Kind == ir.EventDone {
		result.Stats.Complete = true
	}
	if len(events) > 0 && rec.TraceHash != "" {
		hash, err := ir.TraceHash(events)
		if err != nil {
			return TraceResult{}, err
		}
		result.Stats.HashMatches = hash == rec.TraceHash
	}

	for _, e := range events {
		if kind != 0 && e.Kind != kind {
			continue
		}
		if limit > 0 && len(result.Timeline) >= limit {
			break
		}
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:         e.Seq,
			Kind:        e.Kind.String(),
			I:           e.I,
			J:           e.J,
			Comparisons: e.Comparisons,
			Swaps:       e.Swaps,
		})
	}
	return result, nil
}

// WriteText prints the run header and one line per event.
func (r TraceResult) WriteText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Run: %s (%s, %d elements, %s)\n", r.Run.ID, r.Run.Algorithm, r.Run.Size, r.Run.Outcome)
	fmt.Fprintln(w)

	if r.Stats.TotalEvents == 0 {
		fmt.Fprintln(w, "No trace recorded for this run (record with --traces).")
		return nil
	}

	fmt.Fprintln(w, "Timeline:")
	for _, e := range r.Timeline {
		if e.Kind == ir.EventDone.String() {
			fmt.Fprintf(w, "  [%d] done          c=%d s=%d\n", e.Seq, e.Comparisons, e.Swaps)
			continue
		}
		fmt.Fprintf(w, "  [%d] %-7s %d,%d  c=%d s=%d\n", e.Seq, e.Kind, e.I, e.J, e.Comparisons, e.Swaps)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Stats:")
	fmt.Fprintf(w, "  Total events: %d\n", r.Stats.TotalEvents)
	fmt.Fprintf(w, "  Compares:     %d\n", r.Stats.Compares)
	fmt.Fprintf(w, "  Mutations:    %d\n", r.Stats.Mutations)
	fmt.Fprintf(w, "  Complete:     %v\n", r.Stats.Complete)
	if verbose && r.Run.TraceHash != "" {
		fmt.Fprintf(w, "  Trace hash:   %s (match: %v)\n", r.Run.TraceHash, r.Stats.HashMatches)
	}
	return nil
}
