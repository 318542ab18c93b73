// ABOUTME: Time-ordered sequence of timestamped values
// ABOUTME: Binary-searched range queries over events and envelope samples
package timeline

import "sort"

// Entry is a value stamped with a time in seconds
type Entry[T any] struct {
	Time  float32
	Value T
}

// Sequence is a list of entries ordered by non-decreasing Time
type Sequence[T any] []Entry[T]

// Range returns the entries with a <= Time <= b. The result aliases the
// sequence and must not be modified.
func (s Sequence[T]) Range(a, b float32) Sequence[T] {
	if a > b || len(s) == 0 || a > s[len(s)-1].Time {
		return nil
	}
	lo := sort.Search(len(s), func(i int) bool { return s[i].Time >= a })
	hi := sort.Search(len(s), func(i int) bool { return s[i].Time > b })
	if lo >= hi {
		return nil
	}
	return s[lo:hi]
}

// Sorted reports whether timestamps are non-decreasing
func (s Sequence[T]) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Time < s[i-1].Time {
			return false
		}
	}
	return true
}

// End returns the last timestamp, or 0 for an empty sequence
func (s Sequence[T]) End() float32 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Time
}
