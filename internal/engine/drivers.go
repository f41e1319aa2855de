package engine

import (
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// Driver is the step generator of one sorting algorithm.
//
// A driver sorts the stepper's array in place and returns nil when its logic
// is exhausted, or the first error returned by a stepper operation
// (ErrCancelled after stop, or a step budget overrun). On any return the
// array holds a permutation of its input.
type Driver func(s *Stepper) error

var drivers = map[ir.Algorithm]Driver{
	ir.AlgorithmBubble:    bubbleSort,
	ir.AlgorithmSelection: selectionSort,
	ir.AlgorithmInsertion: insertionSort,
	ir.AlgorithmMerge:     mergeSort,
	ir.AlgorithmQuick:     quickSort,
	ir.AlgorithmHeap:      heapSort,
}

// DriverFor returns the driver of an algorithm.
func DriverFor(a ir.Algorithm) (Driver, error) {
	d, ok := drivers[a]
	if !ok {
		return nil, fmt.Errorf("no driver for %s", a)
	}
	return d, nil
}

// bubbleSort compares adjacent pairs front to back and swaps strictly
// greater pairs. Each pass shrinks by one.
func bubbleSort(s *Stepper) error {
	n := s.Len()
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			if err := s.Compare(j, j+1); err != nil {
				return err
			}
			if s.At(j) > s.At(j+1) {
				if err := s.Swap(j, j+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// selectionSort scans for the minimum of the unsorted suffix and swaps it
// into place, at most once per position.
func selectionSort(s *Stepper) error {
	n := s.Len()
	for i := 0; i < n-1; i++ {
		minIndex := i
		for j := i + 1; j < n; j++ {
			if err := s.Compare(minIndex, j); err != nil {
				return err
			}
			if s.At(j) < s.At(minIndex) {
				minIndex = j
			}
		}
		if minIndex != i {
			if err := s.Swap(i, minIndex); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertionSort shifts larger elements right until the key fits. Every
// evaluation of a[j] > key is a comparison; every shift is an overwrite.
func insertionSort(s *Stepper) error {
	n := s.Len()
	for i := 1; i < n; i++ {
		key := s.At(i)
		j := i - 1

		// Invariant: position j+1 is the hole that will receive key.
		var err error
		for j >= 0 {
			if err = s.Compare(j, j+1); err != nil {
				break
			}
			if s.At(j) <= key {
				break
			}
			if err = s.Overwrite(j+1, j, s.At(j)); err != nil {
				break
			}
			j--
		}
		s.Restore(j+1, key)
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeSort is top-down merge sort. Every element placed by a merge,
// including leftovers copied after one side runs out, is a mutation. Each
// leftover copy checkpoints, since no comparison precedes it.
func mergeSort(s *Stepper) error {
	return mergeSortRange(s, 0, s.Len()-1)
}

func mergeSortRange(s *Stepper, left, right int) error {
	if left >= right {
		return nil
	}
	if err := s.CheckStop(); err != nil {
		return err
	}
	mid := left + (right-left)/2
	if err := mergeSortRange(s, left, mid); err != nil {
		return err
	}
	if err := mergeSortRange(s, mid+1, right); err != nil {
		return err
	}
	return merge(s, left, mid, right)
}

func merge(s *Stepper, left, mid, right int) error {
	lhs := s.Slice(left, mid+1)
	rhs := s.Slice(mid+1, right+1)

	i, j, k := 0, 0, left
	abort := func(err error) error {
		// Put the unplaced tails back so the range stays a permutation.
		for _, v := range lhs[i:] {
			s.Restore(k, v)
			k++
		}
		for _, v := range rhs[j:] {
			s.Restore(k, v)
			k++
		}
		return err
	}

	for i < len(lhs) && j < len(rhs) {
		if err := s.Compare(left+i, mid+1+j); err != nil {
			return abort(err)
		}
		if lhs[i] <= rhs[j] {
			if err := s.Overwrite(k, left+i, lhs[i]); err != nil {
				return abort(err)
			}
			i++
		} else {
			if err := s.Overwrite(k, mid+1+j, rhs[j]); err != nil {
				return abort(err)
			}
			j++
		}
		k++
	}

	for i < len(lhs) {
		if err := s.Checkpoint(); err != nil {
			return abort(err)
		}
		if err := s.Overwrite(k, left+i, lhs[i]); err != nil {
			return abort(err)
		}
		i++
		k++
	}
	for j < len(rhs) {
		if err := s.Checkpoint(); err != nil {
			return abort(err)
		}
		if err := s.Overwrite(k, mid+1+j, rhs[j]); err != nil {
			return abort(err)
		}
		j++
		k++
	}
	return nil
}

// quickSort uses the Lomuto partition with the last element as pivot.
func quickSort(s *Stepper) error {
	return quickSortRange(s, 0, s.Len()-1)
}

func quickSortRange(s *Stepper, low, high int) error {
	if low >= high {
		return nil
	}
	if err := s.CheckStop(); err != nil {
		return err
	}
	p, err := partition(s, low, high)
	if err != nil {
		return err
	}
	if err := quickSortRange(s, low, p-1); err != nil {
		return err
	}
	return quickSortRange(s, p+1, high)
}

func partition(s *Stepper, low, high int) (int, error) {
	pivot := s.At(high)
	i := low - 1
	for j := low; j < high; j++ {
		if err := s.Compare(j, high); err != nil {
			return 0, err
		}
		if s.At(j) <= pivot {
			i++
			if err := s.Swap(i, j); err != nil {
				return 0, err
			}
		}
	}
	if err := s.Swap(i+1, high); err != nil {
		return 0, err
	}
	return i + 1, nil
}

// heapSort builds a max-heap and repeatedly moves the maximum to the end.
//
// Child comparisons inside siftDown are not instrumented. Only the
// swap-triggering path emits one Compare(i, largest) followed by the swap.
// Extraction runs down to end == 0, so the last step is a Mutate(0, 0) and
// for every input: swaps == comparisons + n.
func heapSort(s *Stepper) error {
	n := s.Len()
	for i := n/2 - 1; i >= 0; i-- {
		if err := siftDown(s, n, i); err != nil {
			return err
		}
	}
	for end := n - 1; end >= 0; end-- {
		if err := s.Checkpoint(); err != nil {
			return err
		}
		if err := s.Swap(0, end); err != nil {
			return err
		}
		if err := siftDown(s, end, 0); err != nil {
			return err
		}
	}
	return nil
}

func siftDown(s *Stepper, n, i int) error {
	largest := i
	left := 2*i + 1
	right := 2*i + 2

	if left < n && s.At(left) > s.At(largest) {
		largest = left
	}
	if right < n && s.At(right) > s.At(largest) {
		largest = right
	}
	if largest == i {
		return nil
	}
	if err := s.Compare(i, largest); err != nil {
		return err
	}
	if err := s.Swap(i, largest); err != nil {
		return err
	}
	return siftDown(s, n, largest)
}
