package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/config"
	"github.com/roach88/sortviz/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Scenario bool
}

// FileError locates a validation failure.
type FileError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// FileValidation is the result for one file.
type FileValidation struct {
	Path  string     `json:"path"`
	Kind  string     `json:"kind"` // "config" or "scenario"
	Valid bool       `json:"valid"`
	Error *FileError `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate configuration or scenario files",
		Long: `Validate configuration files (.yaml, .yml, .cue) against the schema,
or scenario files with --scenario, without running anything.

Unknown fields are rejected. Errors carry the field path and, for CUE
files, the source position.

Exit codes:
  0 - All files are valid
  1 - One or more files are invalid
  2 - Command error

Examples:
  sortviz validate sortviz.yaml
  sortviz validate sortviz.cue --format json
  sortviz validate --scenario ./scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Scenario, "scenario", false, "validate scenario files instead of configuration")

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	invalid := 0
	for _, path := range paths {
		fv := validateFile(path, opts.Scenario)
		formatter.VerboseLog("Validated %s %s: valid=%v", fv.Kind, path, fv.Valid)
		if !fv.Valid {
			result.Valid = false
			invalid++
		}
		result.Files = append(result.Files, fv)
	}

	if !result.Valid {
		msg := fmt.Sprintf("validation failed for %d file(s)", invalid)
		if err := formatter.Failure(result, ErrCodeInvalid, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result)
}

func validateFile(path string, scenario bool) FileValidation {
	fv := FileValidation{Path: path, Kind: "config"}
	if scenario {
		fv.Kind = "scenario"
	}

	if _, err := os.Stat(path); err != nil {
		fv.Error = &FileError{Message: err.Error()}
		return fv
	}

	var err error
	if scenario {
		_, err = harness.LoadScenario(path)
	} else {
		_, err = config.Load(path)
	}
	if err != nil {
		fv.Error = fileError(err)
		return fv
	}
	fv.Valid = true
	return fv
}

// fileError extracts the field and position of a config schema error.
func fileError(err error) *FileError {
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		return &FileError{Message: err.Error()}
	}
	fe := &FileError{Field: verr.Field, Message: verr.Message}
	if verr.Pos.IsValid() {
		fe.Line = verr.Pos.Line()
		fe.Column = verr.Pos.Column()
	}
	return fe
}

// WriteText prints one line per file.
func (r ValidationResult) WriteText(w io.Writer, verbose bool) error {
	for _, f := range r.Files {
		if f.Valid {
			fmt.Fprintf(w, "✓ %s\n", filepath.Clean(f.Path))
			continue
		}
		e := f.Error
		switch {
		case e.Line > 0:
			fmt.Fprintf(w, "✗ %s:%d:%d: %s: %s\n", filepath.Clean(f.Path), e.Line, e.Column, e.Field, e.Message)
		case e.Field != "":
			fmt.Fprintf(w, "✗ %s: %s: %s\n", filepath.Clean(f.Path), e.Field, e.Message)
		default:
			fmt.Fprintf(w, "✗ %s: %s\n", filepath.Clean(f.Path), e.Message)
		}
	}
	if r.Valid {
		fmt.Fprintln(w, "✓ All files valid")
	}
	return nil
}
