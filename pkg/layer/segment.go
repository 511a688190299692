// Package layer batches sorted draw items into homogeneous runs.
//
// # Overview
//
// A painter pays for every drawing-context state change (fill color, alpha,
// stroke width). Draw items sorted by priority and then by a masked style
// word form contiguous runs that can each be painted with one state change.
// [Segment] finds the run boundaries without scanning every item: it bisects
// spans whose endpoints differ and skips spans whose endpoints agree, so k
// boundaries cost O(k·log(n/k)) comparisons instead of O(n).
//
// # Layers
//
// Priorities are integers in [0, depth). [Segmentation.Layers] records, for
// each priority, the exclusive end index of its items. An empty priority has
// Populated == false and an End equal to the end of the nearest lower
// populated level (0 if none), so level ranges stay contiguous. Callers must
// check Populated rather than infer emptiness from End.
//
// # Precondition
//
// Input must already be sorted by (priority, style&mask). Segment never sorts;
// [SortFunc] is provided for callers that need to.
package layer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrPriorityRange is returned when an item's priority is outside [0, depth).
	ErrPriorityRange = errors.New("priority out of range")

	// ErrUnsorted is returned when consecutive runs have decreasing priority.
	ErrUnsorted = errors.New("input not sorted by priority")
)

// Layer is the extent of one priority level.
type Layer struct {
	// End is the exclusive end index of the level's items.
	End int
	// Populated is false for a level with no items.
	Populated bool
}

// Run is a maximal span of items sharing priority and masked style.
type Run struct {
	Start, End int
	Priority   int
	Style      uint32
}

// Len returns the number of items in the run.
func (r Run) Len() int { return r.End - r.Start }

// Segmentation is the result of [Segment].
type Segmentation struct {
	Layers []Layer
	// Bounds holds every index where priority or masked style differs from the
	// preceding item, plus 0 and the input length, ascending.
	Bounds []int
	Runs   []Run
}

// Range returns the half-open item range of priority p and whether the level
// holds any items.
func (s Segmentation) Range(p int) (start, end int, ok bool) {
	if p < 0 || p >= len(s.Layers) {
		return 0, 0, false
	}
	if p > 0 {
		start = s.Layers[p-1].End
	}
	return start, s.Layers[p].End, s.Layers[p].Populated
}

// Segment locates priority and style boundaries over n items.
//
// priority(i) and style(i) report the sort keys of item i; only style bits
// selected by mask are compared.
func Segment(n, depth int, priority func(int) int, style func(int) uint32, mask uint32) (Segmentation, error) {
	s := Segmentation{Layers: make([]Layer, depth)}
	if n <= 0 {
		s.Bounds = []int{0}
		return s, nil
	}

	b := &bisector{priority: priority, style: style, mask: mask, bounds: []int{0}}
	if n > 1 {
		b.priorities(0, n-1)
	}
	b.bounds = append(b.bounds, n)
	s.Bounds = b.bounds

	s.Runs = make([]Run, 0, len(s.Bounds)-1)
	last := -1
	for i := 0; i+1 < len(s.Bounds); i++ {
		start, end := s.Bounds[i], s.Bounds[i+1]
		p := priority(start)
		if p < 0 || p >= depth {
			return Segmentation{}, fmt.Errorf("item %d: %w: %d not in [0, %d)", start, ErrPriorityRange, p, depth)
		}
		if p < last {
			return Segmentation{}, fmt.Errorf("item %d: %w", start, ErrUnsorted)
		}
		last = p
		s.Runs = append(s.Runs, Run{Start: start, End: end, Priority: p, Style: style(start) & mask})
		s.Layers[p] = Layer{End: end, Populated: true}
	}

	for p := range s.Layers {
		if s.Layers[p].Populated {
			continue
		}
		if p > 0 {
			s.Layers[p].End = s.Layers[p-1].End
		}
	}
	return s, nil
}

// SegmentItems is Segment over a slice.
func SegmentItems[T any](items []T, depth int, priority func(T) int, style func(T) uint32, mask uint32) (Segmentation, error) {
	return Segment(len(items), depth,
		func(i int) int { return priority(items[i]) },
		func(i int) uint32 { return style(items[i]) },
		mask)
}

// SortFunc sorts items stably by (priority, style&mask), the order Segment
// expects.
func SortFunc[T any](items []T, priority func(T) int, style func(T) uint32, mask uint32) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(priority(a), priority(b)); c != 0 {
			return c
		}
		return cmp.Compare(style(a)&mask, style(b)&mask)
	})
}

type bisector struct {
	priority func(int) int
	style    func(int) uint32
	mask     uint32
	bounds   []int
}

// priorities records boundaries in (l, r]. Spans with equal priority at both
// ends hold a single level and fall through to the style-only search.
func (b *bisector) priorities(l, r int) {
	if b.priority(l) == b.priority(r) {
		b.styles(l, r)
		return
	}
	if r-l == 1 {
		b.bounds = append(b.bounds, r)
		return
	}
	m := l + (r-l)/2
	b.priorities(l, m)
	b.priorities(m, r)
}

// styles records boundaries in (l, r] where priority is constant.
func (b *bisector) styles(l, r int) {
	if b.style(l)&b.mask == b.style(r)&b.mask {
		return
	}
	if r-l == 1 {
		b.bounds = append(b.bounds, r)
		return
	}
	m := l + (r-l)/2
	b.styles(l, m)
	b.styles(m, r)
}
