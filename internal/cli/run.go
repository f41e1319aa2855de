package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/analysis"
	"github.com/roach88/sortviz/internal/engine"
	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/metrics"
	"github.com/roach88/sortviz/internal/render"
	"github.com/roach88/sortviz/internal/session"
	"github.com/roach88/sortviz/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config ConfigFlags

	Input      string
	Instant    bool
	Render     bool
	Width      int
	Interval   time.Duration
	Metrics    bool
	StopAfter  int64
	PauseAfter int64
	PauseFor   time.Duration
	Timeout    time.Duration

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunReport is the output of the run command.
type RunReport struct {
	analysis.Report
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Metrics string `json:"metrics,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [algorithm]",
		Short: "Run one sorting algorithm",
		Long: `Generate an array and sort it step by step with one algorithm.

The algorithm defaults to the one in the configuration. Runs are throttled by
the speed setting; --instant removes the delay. Ctrl-C stops the run at its
next step and reports the partial result.

Exit codes:
  0 - Run completed or was stopped
  1 - Run faulted
  2 - Command error (invalid flags, database error, etc.)

Examples:
  sortviz run quick --size 30 --render
  sortviz run heap --input 5,3,8,1 --instant
  sortviz run merge --db ./runs.db --traces --stop-after 100
  sortviz run --config sortviz.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts, args, cmd)
		},
	}

	opts.Config.register(cmd)
	cmd.Flags().StringVar(&opts.Input, "input", "", "sort these values instead of a generated array (e.g. 5,3,8)")
	cmd.Flags().BoolVar(&opts.Instant, "instant", false, "no per-step delay")
	cmd.Flags().BoolVar(&opts.Render, "render", false, "draw text frames while sorting")
	cmd.Flags().IntVar(&opts.Width, "width", 60, "width of the longest bar")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 50*time.Millisecond, "minimum time between frames")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the run")
	cmd.Flags().Int64Var(&opts.StopAfter, "stop-after", 0, "stop after this many events")
	cmd.Flags().Int64Var(&opts.PauseAfter, "pause-after", 0, "pause after this many events")
	cmd.Flags().DurationVar(&opts.PauseFor, "pause-for", time.Second, "how long --pause-after holds the run")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "stop the run after this long (0 = no limit)")

	return cmd
}

func runSort(opts *RunOptions, args []string, cmd *cobra.Command) error {
	logger := opts.Logger()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.Config.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if len(args) == 1 {
		cfg.Algorithm = args[0]
	}
	alg, err := ir.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid algorithm", err)
	}
	cfg.Algorithm = alg.String()

	var extra []engine.Option
	if opts.Instant {
		extra = append(extra, engine.WithDelay(0))
	}
	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	extra = append(extra, engine.WithRunIDGenerator(runIDs))

	var collector *metrics.Collector
	if opts.Metrics {
		collector = metrics.NewCollector()
		extra = append(extra, engine.WithObserver(collector.Observer()))
	}

	var recorder *store.Recorder
	if cfg.Database != "" {
		st, err := openStore(cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		recorder = store.NewRecorder(context.Background(), st, cfg.RecordTraces, logger)
		extra = append(extra, engine.WithObserver(recorder))
	}

	s, err := session.New(cfg, logger, extra...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}
	ctl := s.Controller()

	if opts.Input != "" {
		values, err := parseValues(opts.Input)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --input", err)
		}
		if err := s.Load(values); err != nil {
			return WrapExitError(ExitCommandError, "failed to load input", err)
		}
	}

	if opts.Render && !formatter.JSON() {
		ctl.Observe(render.NewLive(cmd.OutOrStdout(), s.View, opts.Width, opts.Interval))
	}
	if opts.StopAfter > 0 || opts.PauseAfter > 0 {
		ctl.Observe(stepTriggers(ctl, opts.StopAfter, opts.PauseAfter, opts.PauseFor, logger))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	formatter.VerboseLog("Sorting %d elements with %s", len(ctl.Values()), alg.Title())
	if _, err := s.Start(ctx, alg); err != nil {
		return WrapExitError(ExitCommandError, "failed to start run", err)
	}

	// The run observes ctx itself, so Wait always returns once it unwinds.
	res, err := ctl.Wait(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to wait for run", err)
	}
	if recorder != nil {
		if err := recorder.Err(); err != nil {
			logger.Warn("run was not recorded", "run_id", res.ID, "error", err)
		}
	}

	report := RunReport{
		Report: analysis.Analyze(res),
		Status: s.Status().Message,
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	if collector != nil {
		var buf bytes.Buffer
		if err := collector.WriteText(&buf); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode metrics", err)
		}
		report.Metrics = buf.String()
	}

	if res.Outcome == ir.OutcomeFaulted {
		if err := formatter.Failure(report, ErrCodeFaulted, report.Error); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "run faulted", res.Err)
	}
	return formatter.Success(report)
}

// stepTriggers stops or pauses the run at fixed event positions. Stop wins
// when both fall on the same event. A trigger that lands after the run has
// left Running or Paused is logged and ignored.
func stepTriggers(ctl *engine.Controller, stopAfter, pauseAfter int64, pauseFor time.Duration, logger *slog.Logger) engine.Observer {
	return engine.ObserverFuncs{
		Step: func(e ir.StepEvent) {
			if stopAfter > 0 && e.Seq == stopAfter {
				if err := ctl.RequestStop(); err != nil {
					logger.Debug("stop trigger ignored", "seq", e.Seq, "error", err)
				}
				return
			}
			if pauseAfter > 0 && e.Seq == pauseAfter {
				if err := ctl.Pause(); err != nil {
					logger.Debug("pause trigger ignored", "seq", e.Seq, "error", err)
					return
				}
				time.AfterFunc(pauseFor, func() {
					if err := ctl.Resume(); err != nil {
						logger.Debug("resume after pause ignored", "error", err)
					}
				})
			}
		},
	}
}

// WriteText renders the final statistics and efficiency analysis.
func (r RunReport) WriteText(w io.Writer, verbose bool) error {
	res := r.Result
	fmt.Fprintf(w, "%s: %s\n", res.Algorithm.Title(), r.Status)
	fmt.Fprintf(w, "  Run:         %s\n", res.ID)
	fmt.Fprintf(w, "  Outcome:     %s\n", res.Outcome)
	fmt.Fprintf(w, "  Array size:  %d\n", res.Size)
	fmt.Fprintf(w, "  Comparisons: %d\n", res.Stats.Comparisons)
	fmt.Fprintf(w, "  Swaps:       %d\n", res.Stats.Swaps)
	fmt.Fprintf(w, "  Time:        %.3fs\n", res.Stats.ElapsedSeconds())
	if res.Dropped > 0 {
		fmt.Fprintf(w, "  Coalesced:   %d of %d events\n", res.Dropped, res.Events)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  Error:       %s\n", r.Error)
	}

	p := r.Profile
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Complexity: best %s, average %s, worst %s, space %s\n", p.Best, p.Average, p.Worst, p.Space)
	if r.HasBaseline {
		fmt.Fprintf(w, "Efficiency: %.1f%% of %.0f theoretical comparisons\n", r.Efficiency, r.Theoretical)
	}

	if verbose {
		fmt.Fprintf(w, "\nInput:  %s\n", formatValues(res.Input))
		fmt.Fprintf(w, "Output: %s\n", formatValues(res.Output))
		for _, note := range p.Notes {
			fmt.Fprintf(w, "  - %s\n", note)
		}
	}
	if r.Metrics != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, r.Metrics)
	}
	return nil
}

// openStore opens the history database with CLI error mapping.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
