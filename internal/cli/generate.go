package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/ir"
	"github.com/roach88/sortviz/internal/render"
	"github.com/roach88/sortviz/internal/session"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Config ConfigFlags
	Render bool
	Width  int
}

// GenerateResult is a generated array.
type GenerateResult struct {
	Size      int    `json:"size"`
	Pattern   string `json:"pattern"`
	Values    []int  `json:"values"`
	InputHash string `json:"input_hash"`

	frame string
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an input array",
		Long: `Generate an array the way run does, without sorting it.

The output can be fed back to run with --input. With a fixed --seed the same
array is generated every time.

Examples:
  sortviz generate --size 20 --seed 7
  sortviz generate --pattern near-sorted --render
  sortviz run quick --input "$(sortviz generate --size 30)"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	opts.Config.register(cmd)
	cmd.Flags().BoolVar(&opts.Render, "render", false, "draw the array as bars")
	cmd.Flags().IntVar(&opts.Width, "width", 60, "width of the longest bar")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	cfg, err := opts.Config.resolve(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	s, err := session.New(cfg, opts.Logger())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to generate array", err)
	}
	view := s.View()

	result := GenerateResult{
		Size:      len(view.Values),
		Pattern:   cfg.Pattern,
		Values:    view.Values,
		InputHash: ir.InputHash(view.Values),
	}
	if opts.Render {
		result.frame = render.Frame(view, opts.Width)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	formatter.VerboseLog("%s", s.Status().Message)
	return formatter.Success(result)
}

// WriteText prints the values as a comma-separated list, suitable for
// run --input.
func (r GenerateResult) WriteText(w io.Writer, verbose bool) error {
	if r.frame != "" {
		io.WriteString(w, r.frame)
	}
	if verbose {
		fmt.Fprintf(w, "# %d elements, pattern %s, input hash %s\n", r.Size, r.Pattern, r.InputHash)
	}
	_, err := fmt.Fprintln(w, formatValues(r.Values))
	return err
}
