// Package config loads and validates sortviz configuration.
//
// Configuration files are YAML or CUE. Both decode onto Default() and are
// validated against the embedded CUE schema, so a file only needs the keys
// it changes. Command-line flags are applied by the caller afterwards and
// re-validated with Validate.
package config

import (
	_ "embed"
	"time"

	"github.com/roach88/sortviz/internal/arraygen"
	"github.com/roach88/sortviz/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Speed bounds of the speed slider.
const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 50
)

// Config is the full run configuration.
type Config struct {
	Algorithm     string `yaml:"algorithm" json:"algorithm"`
	Size          int    `yaml:"size" json:"size"`
	MaxValue      int    `yaml:"max_value" json:"max_value"`
	Pattern       string `yaml:"pattern" json:"pattern"`
	Speed         int    `yaml:"speed" json:"speed"`
	ShowNumbers   bool   `yaml:"show_numbers" json:"show_numbers"`
	Seed          uint64 `yaml:"seed" json:"seed"`                     // 0 = random seed
	QueueCapacity int    `yaml:"queue_capacity" json:"queue_capacity"` // 0 = unbounded
	MaxSteps      int64  `yaml:"max_steps" json:"max_steps"`           // 0 = derived from size
	Database      string `yaml:"database" json:"database"`             // empty = no history
	RecordTraces  bool   `yaml:"record_traces" json:"record_traces"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Algorithm: ir.AlgorithmBubble.String(),
		Size:      arraygen.DefaultSize,
		MaxValue:  arraygen.MaxValue,
		Pattern:   string(arraygen.PatternRandom),
		Speed:     DefaultSpeed,
	}
}

// AlgorithmValue returns the parsed algorithm.
func (c Config) AlgorithmValue() (ir.Algorithm, error) {
	return ir.ParseAlgorithm(c.Algorithm)
}

// Delay returns the per-step delay of the configured speed.
func (c Config) Delay() time.Duration {
	return DelayForSpeed(c.Speed)
}

// DelayForSpeed maps a speed slider value to a per-step delay:
// max(1, 101-speed) milliseconds. Speed 100 is 1ms, speed 1 is 100ms.
func DelayForSpeed(speed int) time.Duration {
	return time.Duration(max(1, 101-speed)) * time.Millisecond
}

// normalize rewrites the algorithm to its canonical name when it parses,
// so "Quick Sort" and "quick" validate alike.
func (c *Config) normalize() {
	if a, err := ir.ParseAlgorithm(c.Algorithm); err == nil {
		c.Algorithm = a.String()
	}
	if p, err := arraygen.ParsePattern(c.Pattern); err == nil {
		c.Pattern = string(p)
	}
}
