package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/analysis"
	"github.com/roach88/sortviz/internal/arraygen"
	"github.com/roach88/sortviz/internal/ir"
)

// AlgorithmInfo describes one algorithm.
type AlgorithmInfo struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Best        string   `json:"best"`
	Average     string   `json:"average"`
	Worst       string   `json:"worst"`
	Space       string   `json:"space"`
	Stable      bool     `json:"stable"`
	InPlace     bool     `json:"in_place"`
	Theoretical float64  `json:"theoretical_comparisons"`
	Notes       []string `json:"notes,omitempty"`
}

// AlgorithmsResult lists the available algorithms.
type AlgorithmsResult struct {
	Size       int             `json:"size"`
	Algorithms []AlgorithmInfo `json:"algorithms"`
}

// NewAlgorithmsCommand creates the algorithms command.
func NewAlgorithmsCommand(rootOpts *RootOptions) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "List the sorting algorithms",
		Long: `List the sorting algorithms with their complexity profiles and the
theoretical comparison count for an array of --size elements.

Examples:
  sortviz algorithms
  sortviz algorithms --size 100 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("--size must be non-negative, got %d", size))
			}
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return formatter.Success(listAlgorithms(size))
		},
	}

	cmd.Flags().IntVar(&size, "size", arraygen.DefaultSize, "array size for theoretical comparisons")

	return cmd
}

func listAlgorithms(size int) AlgorithmsResult {
	result := AlgorithmsResult{Size: size}
	for _, a := range ir.Algorithms() {
		p, ok := analysis.ProfileFor(a)
		if !ok {
			continue
		}
		result.Algorithms = append(result.Algorithms, AlgorithmInfo{
			Name:        a.String(),
			Title:       a.Title(),
			Best:        p.Best,
			Average:     p.Average,
			Worst:       p.Worst,
			Space:       p.Space,
			Stable:      p.Stable,
			InPlace:     p.InPlace,
			Theoretical: analysis.TheoreticalComparisons(a, size),
			Notes:       p.Notes,
		})
	}
	return result
}

// WriteText prints the profiles as a table.
func (r AlgorithmsResult) WriteText(w io.Writer, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "NAME\tTITLE\tBEST\tAVERAGE\tWORST\tSPACE\tSTABLE\tCOMPARISONS (n=%d)\n", r.Size)
	for _, a := range r.Algorithms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%v\t%.0f\n",
			a.Name, a.Title, a.Best, a.Average, a.Worst, a.Space, a.Stable, a.Theoretical)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if verbose {
		for _, a := range r.Algorithms {
			for _, note := range a.Notes {
				fmt.Fprintf(w, "%s: %s\n", a.Name, note)
			}
		}
	}
	return nil
}
