// Package arraygen produces input sequences for the sorting engine.
package arraygen

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Size and value bounds of generated arrays.
const (
	MinSize     = 10
	MaxSize     = 200
	DefaultSize = 50
	MaxValue    = 500
)

// Pattern shapes a generated array.
type Pattern string

const (
	PatternRandom     Pattern = "random"
	PatternSorted     Pattern = "sorted"
	PatternReversed   Pattern = "reversed"
	PatternFewUnique  Pattern = "few-unique"
	PatternNearSorted Pattern = "near-sorted"
)

// Patterns returns every pattern in display order.
func Patterns() []Pattern {
	return []Pattern{PatternRandom, PatternSorted, PatternReversed, PatternFewUnique, PatternNearSorted}
}

// ParsePattern accepts a pattern name case-insensitively. Empty means random.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return PatternRandom, nil
	}
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Patterns(), p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown pattern %q", s)
}

// Generator produces arrays from its own random source.
// Not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. Equal seeds produce equal arrays.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns size uniformly random values in [1, maxValue].
func (g *Generator) Generate(size, maxValue int) ([]int, error) {
	return g.Pattern(PatternRandom, size, maxValue)
}

// Pattern returns size values in [1, maxValue] shaped by p.
func (g *Generator) Pattern(p Pattern, size, maxValue int) ([]int, error) {
	if size < 0 {
		return nil, fmt.Errorf("size must be >= 0, got %d", size)
	}
	if maxValue < 1 {
		return nil, fmt.Errorf("max value must be >= 1, got %d", maxValue)
	}

	values := make([]int, size)
	switch p {
	case PatternRandom, "":
		for i := range values {
			values[i] = g.value(maxValue)
		}
	case PatternSorted, PatternReversed, PatternNearSorted:
		for i := range values {
			values[i] = g.value(maxValue)
		}
		slices.Sort(values)
		if p == PatternReversed {
			slices.Reverse(values)
		}
		if p == PatternNearSorted {
			// One adjacent swap per ten elements.
			for range size / 10 {
				i := g.rng.IntN(size - 1)
				values[i], values[i+1] = values[i+1], values[i]
			}
		}
	case PatternFewUnique:
		pool := make([]int, min(4, maxValue))
		for i := range pool {
			pool[i] = g.value(maxValue)
		}
		for i := range values {
			values[i] = pool[g.rng.IntN(len(pool))]
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q", p)
	}
	return values, nil
}

func (g *Generator) value(maxValue int) int {
	return 1 + g.rng.IntN(maxValue)
}

// Generate returns size random values in [1, maxValue] from an unseeded
// source.
func Generate(size, maxValue int) ([]int, error) {
	return New(rand.Uint64()).Generate(size, maxValue)
}
