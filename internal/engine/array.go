package engine

import (
	"slices"
	"sync"

	"github.com/roach88/sortviz/internal/ir"
)

// ArrayState is the mutable integer sequence of a visualizer instance plus
// its derived counters and the most recent highlighted pair.
//
// The controller owns the ArrayState. While a run is active the driver path
// is its only writer; every write and counter update goes through the
// lock, so observers can take consistent snapshots at any time.
type ArrayState struct {
	mu          sync.RWMutex
	values      []int
	comparisons uint64
	swaps       uint64
	highlight   [2]int
}

// NewArrayState copies values into a fresh state with cleared counters.
func NewArrayState(values []int) *ArrayState {
	return &ArrayState{
		values:    slices.Clone(values),
		highlight: [2]int{ir.NoIndex, ir.NoIndex},
	}
}

// Len returns the number of elements.
func (a *ArrayState) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

// Snapshot returns a copy of the current values.
func (a *ArrayState) Snapshot() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.values)
}

// Counters returns the current comparison and swap totals.
func (a *ArrayState) Counters() (comparisons, swaps uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.comparisons, a.swaps
}

// Highlight returns the most recent operand pair, or NoIndex twice.
func (a *ArrayState) Highlight() [2]int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.highlight
}

// view fills the array part of a View under a single read lock.
func (a *ArrayState) view() ir.View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return ir.View{
		Values:      slices.Clone(a.values),
		Highlight:   a.highlight,
		Comparisons: a.comparisons,
		Swaps:       a.swaps,
	}
}

func (a *ArrayState) at(i int) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.values[i]
}

func (a *ArrayState) load(values []int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values = slices.Clone(values)
	a.comparisons, a.swaps = 0, 0
	a.highlight = [2]int{ir.NoIndex, ir.NoIndex}
}

func (a *ArrayState) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.comparisons, a.swaps = 0, 0
	a.highlight = [2]int{ir.NoIndex, ir.NoIndex}
}

func (a *ArrayState) clearHighlight() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.highlight = [2]int{ir.NoIndex, ir.NoIndex}
}

// compare records one comparison of i and j and returns the new totals.
func (a *ArrayState) compare(i, j int) (uint64, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.comparisons++
	a.highlight = [2]int{i, j}
	return a.comparisons, a.swaps
}

// swap exchanges i and j, counts one mutation and returns the new totals.
func (a *ArrayState) swap(i, j int) (uint64, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[i], a.values[j] = a.values[j], a.values[i]
	a.swaps++
	a.highlight = [2]int{i, j}
	return a.comparisons, a.swaps
}

// overwrite stores v at dst, counts one mutation and returns the new totals.
// from is the index the value logically came from and is only highlighted.
func (a *ArrayState) overwrite(dst, from, v int) (uint64, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[dst] = v
	a.swaps++
	a.highlight = [2]int{dst, from}
	return a.comparisons, a.swaps
}

// restore stores v at i without counting or highlighting.
func (a *ArrayState) restore(i, v int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[i] = v
}
