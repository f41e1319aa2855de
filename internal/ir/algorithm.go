package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Algorithm identifies one of the instrumented sorting drivers.
type Algorithm int

const (
	// AlgorithmBubble is adjacent-swap bubble sort.
	AlgorithmBubble Algorithm = iota + 1
	// AlgorithmSelection is minimum-scan selection sort.
	AlgorithmSelection
	// AlgorithmInsertion is shift-based insertion sort.
	AlgorithmInsertion
	// AlgorithmMerge is top-down merge sort.
	AlgorithmMerge
	// AlgorithmQuick is quicksort with the Lomuto partition scheme.
	AlgorithmQuick
	// AlgorithmHeap is max-heap heap sort.
	AlgorithmHeap
)

var algorithmSlugs = map[Algorithm]string{
	AlgorithmBubble:    "bubble",
	AlgorithmSelection: "selection",
	AlgorithmInsertion: "insertion",
	AlgorithmMerge:     "merge",
	AlgorithmQuick:     "quick",
	AlgorithmHeap:      "heap",
}

var algorithmTitles = map[Algorithm]string{
	AlgorithmBubble:    "Bubble Sort",
	AlgorithmSelection: "Selection Sort",
	AlgorithmInsertion: "Insertion Sort",
	AlgorithmMerge:     "Merge Sort",
	AlgorithmQuick:     "Quick Sort",
	AlgorithmHeap:      "Heap Sort",
}

// Algorithms returns every algorithm in menu order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmBubble,
		AlgorithmSelection,
		AlgorithmInsertion,
		AlgorithmMerge,
		AlgorithmQuick,
		AlgorithmHeap,
	}
}

// String returns the short identifier ("bubble", "merge", ...).
func (a Algorithm) String() string {
	if s, ok := algorithmSlugs[a]; ok {
		return s
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Title returns the display name ("Bubble Sort").
func (a Algorithm) Title() string {
	if s, ok := algorithmTitles[a]; ok {
		return s
	}
	return a.String()
}

// Valid reports whether a names a known driver.
func (a Algorithm) Valid() bool {
	_, ok := algorithmSlugs[a]
	return ok
}

// ParseAlgorithm accepts the short identifier or the display name in any
// case ("quick", "Quick Sort", "QUICKSORT", "quick-sort").
func ParseAlgorithm(s string) (Algorithm, error) {
	key := normalizeAlgorithmName(s)
	for _, a := range Algorithms() {
		if key == a.String() || key == normalizeAlgorithmName(a.Title()) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q: must be one of %v", s, AlgorithmNames())
}

// AlgorithmNames returns the short identifiers in menu order.
func AlgorithmNames() []string {
	names := make([]string, 0, len(algorithmSlugs))
	for _, a := range Algorithms() {
		names = append(names, a.String())
	}
	return names
}

// normalizeAlgorithmName folds case, applies NFKC and strips separators and
// a trailing "sort" so that "Heap Sort" and "heapsort" compare equal.
func normalizeAlgorithmName(s string) string {
	s = cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, s)
	if s != "sort" {
		s = strings.TrimSuffix(s, "sort")
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
