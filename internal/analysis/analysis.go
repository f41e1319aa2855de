// Package analysis relates a run's counters to the textbook cost of its
// algorithm.
package analysis

import (
	"math"

	"github.com/roach88/sortviz/internal/ir"
)

// Profile is the complexity summary of an algorithm.
type Profile struct {
	Algorithm ir.Algorithm `json:"algorithm"`
	Best      string       `json:"best"`
	Average   string       `json:"average"`
	Worst     string       `json:"worst"`
	Space     string       `json:"space"`
	Stable    bool         `json:"stable"`
	InPlace   bool         `json:"in_place"`
	Notes     []string     `json:"notes"`
}

var profiles = map[ir.Algorithm]Profile{
	ir.AlgorithmBubble: {
		Best: "O(n²)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)",
		Stable: true, InPlace: true,
		Notes: []string{"Simple but inefficient for large datasets"},
	},
	ir.AlgorithmSelection: {
		Best: "O(n²)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)",
		InPlace: true,
		Notes:   []string{"Minimum number of swaps"},
	},
	ir.AlgorithmInsertion: {
		Best: "O(n)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)",
		Stable: true, InPlace: true,
		Notes: []string{"Adaptive: performs well on nearly sorted data"},
	},
	ir.AlgorithmMerge: {
		Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)", Space: "O(n)",
		Stable: true,
		Notes:  []string{"Divide and conquer with consistent performance"},
	},
	ir.AlgorithmQuick: {
		Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n²)", Space: "O(log n)",
		InPlace: true,
		Notes:   []string{"Last-element pivot degrades on sorted input"},
	},
	ir.AlgorithmHeap: {
		Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)", Space: "O(1)",
		InPlace: true,
		Notes:   []string{"Consistent O(n log n) performance"},
	},
}

// ProfileFor returns the complexity profile of a.
func ProfileFor(a ir.Algorithm) (Profile, bool) {
	p, ok := profiles[a]
	if !ok {
		return Profile{}, false
	}
	p.Algorithm = a
	return p, true
}

// TheoreticalComparisons is the reference comparison count for n elements:
// n(n-1)/2 for the quadratic sorts and n·log2(n) for the others.
// Returns 0 for unknown algorithms and n < 2.
func TheoreticalComparisons(a ir.Algorithm, n int) float64 {
	if n < 2 {
		return 0
	}
	size := float64(n)
	switch a {
	case ir.AlgorithmBubble, ir.AlgorithmSelection, ir.AlgorithmInsertion:
		return size * (size - 1) / 2
	case ir.AlgorithmMerge, ir.AlgorithmQuick, ir.AlgorithmHeap:
		return size * math.Log2(size)
	default:
		return 0
	}
}

// Efficiency returns actual comparisons as a percentage of the theoretical
// count. ok is false when there is no theoretical count to compare with.
func Efficiency(a ir.Algorithm, n int, comparisons uint64) (percent float64, ok bool) {
	theoretical := TheoreticalComparisons(a, n)
	if theoretical <= 0 {
		return 0, false
	}
	return float64(comparisons) / theoretical * 100, true
}

// Report is the final analysis of one run.
type Report struct {
	Result      ir.Result `json:"result"`
	Profile     Profile   `json:"profile"`
	Theoretical float64   `json:"theoretical_comparisons"`
	Efficiency  float64   `json:"efficiency_percent"`
	HasBaseline bool      `json:"has_baseline"`
}

// Analyze builds the report of a finished run.
func Analyze(res ir.Result) Report {
	profile, _ := ProfileFor(res.Algorithm)
	eff, ok := Efficiency(res.Algorithm, res.Size, res.Stats.Comparisons)
	return Report{
		Result:      res,
		Profile:     profile,
		Theoretical: TheoreticalComparisons(res.Algorithm, res.Size),
		Efficiency:  eff,
		HasBaseline: ok,
	}
}
