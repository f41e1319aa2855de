package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	Algorithm string
	Outcome   string
	Limit     int
	Stats     bool
}

// RunSummary is the CLI view of a stored run.
type RunSummary struct {
	ID          string `json:"id"`
	Algorithm   string `json:"algorithm"`
	Size        int    `json:"size"`
	Outcome     string `json:"outcome"`
	Comparisons uint64 `json:"comparisons"`
	Swaps       uint64 `json:"swaps"`
	Events      int64  `json:"events"`
	Dropped     int64  `json:"dropped"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	InputHash   string `json:"input_hash"`
	TraceHash   string `json:"trace_hash,omitempty"`
	Error       string `json:"error,omitempty"`
}

func summarize(rec store.RunRecord) RunSummary {
	return RunSummary{
		ID:          rec.ID,
		Algorithm:   rec.Algorithm.String(),
		Size:        rec.Size,
		Outcome:     string(rec.Outcome),
		Comparisons: rec.Comparisons,
		Swaps:       rec.Swaps,
		Events:      rec.Events,
		Dropped:     rec.Dropped,
		ElapsedMS:   rec.Elapsed.Milliseconds(),
		InputHash:   rec.InputHash,
		TraceHash:   rec.TraceHash,
		Error:       rec.Error,
	}
}

// AlgorithmSummary is the CLI view of store.AlgorithmStats.
type AlgorithmSummary struct {
	Algorithm      string  `json:"algorithm"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	Faulted        int     `json:"faulted"`
	AvgComparisons float64 `json:"avg_comparisons"`
	AvgSwaps       float64 `json:"avg_swaps"`
	AvgSize        float64 `json:"avg_size"`
}

// HistoryResult holds the history output. Exactly one of Runs and
// Algorithms is populated.
type HistoryResult struct {
	Runs       []RunSummary       `json:"runs,omitempty"`
	Algorithms []AlgorithmSummary `json:"algorithms,omitempty"`
	Database   store.Info         `json:"database"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with --db, newest first.

With --stats, show per-algorithm aggregates instead. Averages cover
completed runs; cancelled and faulted runs are counted separately.

Examples:
  sortviz history --db ./runs.db
  sortviz history --db ./runs.db --algorithm quick --outcome completed
  sortviz history --db ./runs.db --stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "", "only runs of this algorithm")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only runs with this outcome (completed, cancelled, faulted)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 = all)")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "show per-algorithm aggregates")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	filter := store.RunFilter{Limit: opts.Limit}
	if opts.Algorithm != "" {
		alg, err := ir.ParseAlgorithm(opts.Algorithm)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --algorithm", err)
		}
		filter.Algorithm = alg
	}
	if opts.Outcome != "" {
		outcome, err := ir.ParseOutcome(opts.Outcome)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --outcome", err)
		}
		filter.Outcome = outcome
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
	var result HistoryResult
	if result.Database, err = st.Info(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to read database", err)
	}
	if opts.Stats {
		stats, err := st.Stats(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to aggregate runs", err)
		}
		result.Algorithms = make([]AlgorithmSummary, 0, len(stats))
		for _, s := range stats {
			result.Algorithms = append(result.Algorithms, AlgorithmSummary{
				Algorithm:      s.Algorithm.String(),
				Completed:      s.Runs,
				Cancelled:      s.Cancelled,
				Faulted:        s.Faulted,
				AvgComparisons: s.AvgComparisons,
				AvgSwaps:       s.AvgSwaps,
				AvgSize:        s.AvgSize,
			})
		}
		return formatter.Success(result)
	}

	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	result.Runs = make([]RunSummary, 0, len(runs))
	for _, rec := range runs {
		result.Runs = append(result.Runs, summarize(rec))
	}
	return formatter.Success(result)
}

// WriteText prints the runs or aggregates as an aligned table.
func (r HistoryResult) WriteText(w io.Writer, verbose bool) error {
	if verbose {
		fmt.Fprintf(w, "Database: %s (schema v%d, %d runs, %d trace events)\n",
			r.Database.Path, r.Database.SchemaVersion, r.Database.Runs, r.Database.Events)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if r.Algorithms != nil {
		if len(r.Algorithms) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return nil
		}
		fmt.Fprintln(tw, "ALGORITHM\tCOMPLETED\tCANCELLED\tFAULTED\tAVG SIZE\tAVG COMPARISONS\tAVG SWAPS")
		for _, a := range r.Algorithms {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\t%.1f\t%.1f\n",
				a.Algorithm, a.Completed, a.Cancelled, a.Faulted, a.AvgSize, a.AvgComparisons, a.AvgSwaps)
		}
		return tw.Flush()
	}

	if len(r.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	header := "ID\tALGORITHM\tSIZE\tOUTCOME\tCOMPARISONS\tSWAPS\tEVENTS"
	if verbose {
		header += "\tELAPSED\tTRACE"
	}
	fmt.Fprintln(tw, header)
	for _, run := range r.Runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d", run.ID, run.Algorithm, run.Size, run.Outcome,
			run.Comparisons, run.Swaps, run.Events)
		if verbose {
			trace := "no"
			if run.TraceHash != "" {
				trace = "yes"
			}
			fmt.Fprintf(tw, "\t%dms\t%s", run.ElapsedMS, trace)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
