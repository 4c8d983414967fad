// Package slot implements the slice algebra and change-tracking log that
// back loom's archetype columns: half-open integer ranges over slots, and
// an append-only, coalescing log of (slice, tick, kind) records.
package slot

import "fmt"

// Slice is a half-open range of slot indices [Start, End).
type Slice struct {
	Start, End int
}

// New builds a Slice, clamping End up to Start if it would otherwise be
// negative-length.
func New(start, end int) Slice {
	if end < start {
		end = start
	}
	return Slice{Start: start, End: end}
}

// Empty returns the canonical empty slice.
func Empty() Slice { return Slice{} }

// IsEmpty reports whether the slice contains no slots.
func (s Slice) IsEmpty() bool { return s.End <= s.Start }

// Len returns the number of slots in the slice.
func (s Slice) Len() int {
	if s.IsEmpty() {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether x falls within the slice.
func (s Slice) Contains(x int) bool { return x >= s.Start && x < s.End }

func (s Slice) String() string { return fmt.Sprintf("[%d..%d)", s.Start, s.End) }

// Overlaps reports whether the two slices share at least one slot.
func (s Slice) Overlaps(o Slice) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Intersect returns the overlap between a and b, or the empty slice if
// they don't overlap.
func Intersect(a, b Slice) Slice {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if end <= start {
		return Empty()
	}
	return New(start, end)
}

// Union returns the smallest slice spanning a and b, if and only if they
// touch or overlap. Two slices "touch" when a.End >= b.Start && b.End >=
// a.Start, i.e. there's no gap between them.
func Union(a, b Slice) (Slice, bool) {
	if a.IsEmpty() {
		return b, true
	}
	if b.IsEmpty() {
		return a, true
	}
	if a.End >= b.Start && b.End >= a.Start {
		return New(min(a.Start, b.Start), max(a.End, b.End)), true
	}
	return Slice{}, false
}

// Difference returns a minus b, but only in the restricted case the
// change-list Not combinator needs: b must be a subset of a and flush
// with one of a's boundaries. Any other relationship returns (Slice{},
// false) since the result wouldn't be expressible as a single slice.
func Difference(a, b Slice) (Slice, bool) {
	if b.IsEmpty() {
		return a, true
	}
	if b.Start < a.Start || b.End > a.End {
		return Slice{}, false
	}
	switch {
	case b.Start == a.Start:
		return New(b.End, a.End), true
	case b.End == a.End:
		return New(a.Start, b.Start), true
	default:
		return Slice{}, false
	}
}

// SplitWith splits a around sub, where sub must be a subset of a. It
// returns the (possibly empty) piece of a before sub, sub itself, and the
// (possibly empty) piece of a after sub.
func SplitWith(a, sub Slice) (left, mid, right Slice) {
	if sub.IsEmpty() {
		return a, Slice{}, Slice{Start: a.End, End: a.End}
	}
	left = New(a.Start, sub.Start)
	mid = sub
	right = New(sub.End, a.End)
	return left, mid, right
}
