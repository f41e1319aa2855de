package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/sortviz/internal/analysis"
	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/session"
	"github.com/roach88/sortviz/internal/store"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Config   ConfigFlags
	Input    string
	Parallel int
}

// CompareEntry is one algorithm's result on the shared input.
type CompareEntry struct {
	Algorithm   string  `json:"algorithm"`
	Title       string  `json:"title"`
	RunID       string  `json:"run_id"`
	Outcome     string  `json:"outcome"`
	Comparisons uint64  `json:"comparisons"`
	Swaps       uint64  `json:"swaps"`
	Events      int64   `json:"events"`
	ElapsedMS   float64 `json:"elapsed_ms"`
	Theoretical float64 `json:"theoretical_comparisons"`
	Efficiency  float64 `json:"efficiency_percent"`
	Error       string  `json:"error,omitempty"`
}

// CompareResult ranks algorithms on one input by comparisons, then swaps.
type CompareResult struct {
	Size      int            `json:"size"`
	InputHash string         `json:"input_hash"`
	Input     []int          `json:"input"`
	Entries   []CompareEntry `json:"entries"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare [algorithm...]",
		Short: "Run several algorithms on the same input",
		Long: `Run several algorithms on the same array concurrently, without delay,
and rank them by comparisons and swaps.

All algorithms run when none are named. Each algorithm gets its own
controller; runs are recorded when --db is set.

Exit codes:
  0 - Every run completed
  1 - At least one run faulted
  2 - Command error

Examples:
  sortviz compare
  sortviz compare merge quick heap --size 200 --seed 1
  sortviz compare --input 5,3,8,1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args, cmd)
		},
	}

	opts.Config.register(cmd)
	cmd.Flags().StringVar(&opts.Input, "input", "", "compare on these values instead of a generated array")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "maximum concurrent runs (0 = all at once)")

	return cmd
}

type comparedRun struct {
	result ir.Result
	trace  []ir.StepEvent
}

func runCompare(opts *CompareOptions, args []string, cmd *cobra.Command) error {
	logger := opts.Logger()

	algorithms := ir.Algorithms()
	if len(args) > 0 {
		algorithms = nil
		for _, arg := range args {
			alg, err := ir.ParseAlgorithm(arg)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid algorithm", err)
			}
			if !slices.Contains(algorithms, alg) {
				algorithms = append(algorithms, alg)
			}
		}
	}

	cfg, err := opts.Config.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	var input []int
	if opts.Input != "" {
		if input, err = parseValues(opts.Input); err != nil {
			return WrapExitError(ExitCommandError, "invalid --input", err)
		}
	} else {
		s, err := session.New(cfg, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate array", err)
		}
		input = s.View().Values
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runs := make([]comparedRun, len(algorithms))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, alg := range algorithms {
		g.Go(func() error {
			run, err := compareOne(gctx, alg, input, cfg.MaxSteps, cfg.RecordTraces && cfg.Database != "", logger)
			if err != nil {
				return fmt.Errorf("%s: %w", alg, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "compare failed", err)
	}

	if cfg.Database != "" {
		if err := recordCompared(ctx, cfg.Database, runs, logger); err != nil {
			return err
		}
	}

	result := CompareResult{
		Size:      len(input),
		InputHash: ir.InputHash(input),
		Input:     input,
		Entries:   make([]CompareEntry, 0, len(runs)),
	}
	faulted := 0
	for _, run := range runs {
		report := analysis.Analyze(run.result)
		entry := CompareEntry{
			Algorithm:   run.result.Algorithm.String(),
			Title:       run.result.Algorithm.Title(),
			RunID:       run.result.ID,
			Outcome:     string(run.result.Outcome),
			Comparisons: run.result.Stats.Comparisons,
			Swaps:       run.result.Stats.Swaps,
			Events:      run.result.Events,
			ElapsedMS:   float64(run.result.Stats.Elapsed.Microseconds()) / 1000,
			Theoretical: report.Theoretical,
			Efficiency:  report.Efficiency,
		}
		if run.result.Err != nil {
			entry.Error = run.result.Err.Error()
			faulted++
		}
		result.Entries = append(result.Entries, entry)
	}
	// Stable: ties keep algorithm order.
	slices.SortStableFunc(result.Entries, func(a, b CompareEntry) int {
		return cmp.Or(cmp.Compare(a.Comparisons, b.Comparisons), cmp.Compare(a.Swaps, b.Swaps))
	})

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if faulted > 0 {
		msg := fmt.Sprintf("%d run(s) faulted", faulted)
		if err := formatter.Failure(result, ErrCodeFaulted, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result)
}

// compareOne runs alg on its own controller without delay. The trace is
// collected only when keepTrace is set.
func compareOne(ctx context.Context, alg ir.Algorithm, input []int, maxSteps int64, keepTrace bool, logger *slog.Logger) (comparedRun, error) {
	var run comparedRun
	opts := []engine.Option{
		engine.WithDelay(0),
		engine.WithSyncDelivery(),
		engine.WithLogger(logger),
	}
	if keepTrace {
		opts = append(opts, engine.WithObserver(engine.ObserverFuncs{
			Step: func(e ir.StepEvent) { run.trace = append(run.trace, e) },
		}))
	}
	if maxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(maxSteps))
	}
	ctl := engine.New(input, opts...)

	id, err := ctl.Start(ctx, alg)
	if err != nil {
		return run, err
	}
	logger.Debug("compare run started", "run_id", id, "algorithm", alg.String())

	res, err := ctl.Wait(context.Background())
	if err != nil {
		return run, err
	}
	run.result = res
	return run, nil
}

// recordCompared writes the runs in algorithm order after they have all
// finished, so SQLite sees a single writer.
func recordCompared(ctx context.Context, path string, runs []comparedRun, logger *slog.Logger) error {
	st, err := openStore(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	for _, run := range runs {
		rec, err := store.NewRunRecord(run.result, run.trace)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build run record", err)
		}
		if err := st.WriteRun(ctx, rec, run.trace); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}
	return nil
}

// WriteText prints the ranking as a table.
func (r CompareResult) WriteText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "%d elements (input %s)\n", r.Size, shortHash(r.InputHash))
	if verbose {
		fmt.Fprintf(w, "Input: %s\n", formatValues(r.Input))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tALGORITHM\tOUTCOME\tCOMPARISONS\tSWAPS\tEFFICIENCY\tTIME")
	for i, e := range r.Entries {
		eff := "-"
		if e.Theoretical > 0 {
			eff = fmt.Sprintf("%.1f%%", e.Efficiency)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%.2fms\n",
			i+1, e.Title, e.Outcome, e.Comparisons, e.Swaps, eff, e.ElapsedMS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if e.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", e.Title, e.Error)
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
