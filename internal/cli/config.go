package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sortviz/internal/config"
)

// ConfigFlags are the flags that override configuration file values.
type ConfigFlags struct {
	Path          string
	Size          int
	MaxValue      int
	Pattern       string
	Speed         int
	Seed          uint64
	ShowNumbers   bool
	QueueCapacity int
	MaxSteps      int64
	Database      string
	RecordTraces  bool
}

// register adds the flags to cmd. Defaults mirror config.Default so help
// output is accurate; only flags the user sets override the file.
func (f *ConfigFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVarP(&f.Path, "config", "c", "", "configuration file (.yaml or .cue)")
	fs.IntVar(&f.Size, "size", def.Size, "array size (10..200)")
	fs.IntVar(&f.MaxValue, "max-value", def.MaxValue, "largest generated value (1..500)")
	fs.StringVar(&f.Pattern, "pattern", def.Pattern, "input shape: random, sorted, reversed, few-unique, near-sorted")
	fs.IntVar(&f.Speed, "speed", def.Speed, "speed 1..100; step delay is max(1, 101-speed) ms")
	fs.Uint64Var(&f.Seed, "seed", 0, "random seed (0 = random)")
	fs.BoolVar(&f.ShowNumbers, "numbers", false, "show values next to bars")
	fs.IntVar(&f.QueueCapacity, "queue", 0, "event queue capacity (0 = unbounded)")
	fs.Int64Var(&f.MaxSteps, "max-steps", 0, "step budget (0 = derived from size)")
	fs.StringVar(&f.Database, "db", "", "SQLite database for run history")
	fs.BoolVar(&f.RecordTraces, "traces", false, "store every event with the run")
}

// resolve loads the configuration file, if any, and applies the flags the
// user set on top of it. The result is validated.
func (f *ConfigFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.Path != "" {
		loaded, err := config.Load(f.Path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("size") {
		cfg.Size = f.Size
	}
	if changed("max-value") {
		cfg.MaxValue = f.MaxValue
	}
	if changed("pattern") {
		cfg.Pattern = f.Pattern
	}
	if changed("speed") {
		cfg.Speed = f.Speed
	}
	if changed("seed") {
		cfg.Seed = f.Seed
	}
	if changed("numbers") {
		cfg.ShowNumbers = f.ShowNumbers
	}
	if changed("queue") {
		cfg.QueueCapacity = f.QueueCapacity
	}
	if changed("max-steps") {
		cfg.MaxSteps = f.MaxSteps
	}
	if changed("db") {
		cfg.Database = f.Database
	}
	if changed("traces") {
		cfg.RecordTraces = f.RecordTraces
	}

	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// parseValues parses a comma- or space-separated list of integers.
func parseValues(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	values := make([]int, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// formatValues renders values as a comma-separated list.
func formatValues(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
