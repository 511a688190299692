// Package chrono provides an order-preserving time index for timeline
// scrubbing.
//
// [Index] keeps items sorted by timestamp and answers range and
// nearest-neighbor queries by binary search. A single [Index.Add] is O(n)
// because it shifts the backing slice; [New] bulk-loads with one stable sort
// in O(n log n). The index owns no items, only their ordering.
//
// Queries on an empty index, or outside the span of stored times, are not
// errors: they return an empty slice or ok == false.
package chrono

import (
	"slices"
	"time"
)

// Timed is anything exposing an instant.
type Timed interface {
	Timestamp() time.Time
}

// Index is a sorted-by-time container. The zero value is an empty index.
type Index[T Timed] struct {
	items []T
}

// New creates an index pre-populated with items. The result is the same as
// adding them one by one: among equal times the last item comes first.
func New[T Timed](items ...T) *Index[T] {
	sorted := slices.Clone(items)
	slices.Reverse(sorted)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return a.Timestamp().Compare(b.Timestamp())
	})
	return &Index[T]{items: sorted}
}

// Add inserts item keeping ascending order. Among equal times the new item
// lands at the leftmost position.
func (x *Index[T]) Add(item T) {
	i := Leftmost(x.items, item.Timestamp())
	var zero T
	x.items = append(x.items, zero)
	copy(x.items[i+1:], x.items[i:])
	x.items[i] = item
}

// Search returns all items with begin <= time <= end in ascending order.
// The result is a copy; it is empty when nothing matches or end < begin.
func (x *Index[T]) Search(begin, end time.Time) []T {
	if len(x.items) == 0 || end.Before(begin) {
		return nil
	}
	lo := Leftmost(x.items, begin)
	hi := Rightmost(x.items, end)
	if lo > hi {
		return nil
	}
	out := make([]T, hi-lo+1)
	copy(out, x.items[lo:hi+1])
	return out
}

// PrevTimeStep returns the time of the last item strictly before t.
func (x *Index[T]) PrevTimeStep(t time.Time) (time.Time, bool) {
	i := Rightmost(x.items, t.Add(-time.Nanosecond))
	if i < 0 {
		return time.Time{}, false
	}
	return x.items[i].Timestamp(), true
}

// NextTimeStep returns the time of the first item strictly after t.
func (x *Index[T]) NextTimeStep(t time.Time) (time.Time, bool) {
	i := Leftmost(x.items, t.Add(time.Nanosecond))
	if i >= len(x.items) {
		return time.Time{}, false
	}
	return x.items[i].Timestamp(), true
}

// First returns the earliest item.
func (x *Index[T]) First() (T, bool) {
	if len(x.items) == 0 {
		var zero T
		return zero, false
	}
	return x.items[0], true
}

// Last returns the latest item.
func (x *Index[T]) Last() (T, bool) {
	if len(x.items) == 0 {
		var zero T
		return zero, false
	}
	return x.items[len(x.items)-1], true
}

// At returns the i-th item in time order.
func (x *Index[T]) At(i int) T { return x.items[i] }

// Len returns the number of items.
func (x *Index[T]) Len() int { return len(x.items) }

// Items returns a copy of all items in time order.
func (x *Index[T]) Items() []T {
	out := make([]T, len(x.items))
	copy(out, x.items)
	return out
}

// Clear empties the index.
func (x *Index[T]) Clear() { x.items = nil }

// Leftmost returns the first index i with items[i].Timestamp() >= t, or
// len(items) if none. items must be sorted ascending.
func Leftmost[T Timed](items []T, t time.Time) int {
	lo, hi := 0, len(items)
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		if items[m].Timestamp().Before(t) {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}

// Rightmost returns the last index i with items[i].Timestamp() <= t, or -1
// if none. items must be sorted ascending.
func Rightmost[T Timed](items []T, t time.Time) int {
	lo, hi := 0, len(items)
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		if items[m].Timestamp().After(t) {
			hi = m
		} else {
			lo = m + 1
		}
	}
	return lo - 1
}
