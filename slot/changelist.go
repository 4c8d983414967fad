package slot

import "sort"

// Kind classifies a change record.
type Kind uint8

const (
	Inserted Kind = iota
	Modified
	Removed
)

func (k Kind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Record is one (slice, tick, kind) entry in a ChangeList.
type Record struct {
	Slice Slice
	Tick  uint32
	Kind  Kind
}

// ChangeList is the per-column, per-kind-agnostic log described in
// spec.md §4.2: records are kept sorted by (Tick, Slice.Start), and a
// newly set record is coalesced into the last entry when its tick and
// kind match and the slices touch. Kind is threaded through Record itself
// so one ChangeList backs all three change kinds for a column; callers
// typically only read back one kind at a time via Get.
type ChangeList struct {
	records        []Record
	trackModified  bool
}

// NewChangeList returns an empty change list.
func NewChangeList() *ChangeList {
	return &ChangeList{}
}

// SetTrackModified records a modification-tracking flag. loom follows the
// "always emit" discipline spec.md §9 calls out as the one the test suite
// assumes: the flag is only stored and reported by TrackModified, and Set
// accepts Modified records regardless of it.
func (c *ChangeList) SetTrackModified(track bool) { c.trackModified = track }

// TrackModified reports the current modification-tracking discipline.
func (c *ChangeList) TrackModified() bool { return c.trackModified }

// Set inserts a new record, coalescing with the last entry when possible.
// Coalescence is restricted to the last record (by design: O(1)
// amortised insertion); a periodic Compact call handles older runs.
func (c *ChangeList) Set(r Record) {
	if r.Slice.IsEmpty() {
		return
	}
	if n := len(c.records); n > 0 {
		last := &c.records[n-1]
		if last.Tick == r.Tick && last.Kind == r.Kind {
			if u, ok := Union(last.Slice, r.Slice); ok {
				last.Slice = u
				return
			}
		}
	}
	c.records = append(c.records, r)
	if !sort.SliceIsSorted(c.records, c.less) {
		sort.Slice(c.records, c.less)
	}
}

func (c *ChangeList) less(i, j int) bool {
	a, b := c.records[i], c.records[j]
	if a.Tick != b.Tick {
		return a.Tick < b.Tick
	}
	return a.Slice.Start < b.Slice.Start
}

// Get returns the records of the given kind, sorted by (tick, slice.start).
func (c *ChangeList) Get(kind Kind) []Record {
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].Slice.Start < out[j].Slice.Start
	})
	return out
}

// Compact merges adjacent same-tick/same-kind records anywhere in the
// log, not just at the tail. Intended to be called periodically (e.g. at
// a tick boundary) rather than on every Set.
func (c *ChangeList) Compact() {
	if len(c.records) < 2 {
		return
	}
	sort.Slice(c.records, func(i, j int) bool {
		a, b := c.records[i], c.records[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		return a.Slice.Start < b.Slice.Start
	})
	merged := c.records[:1]
	for _, r := range c.records[1:] {
		last := &merged[len(merged)-1]
		if last.Tick == r.Tick && last.Kind == r.Kind {
			if u, ok := Union(last.Slice, r.Slice); ok {
				last.Slice = u
				continue
			}
		}
		merged = append(merged, r)
	}
	c.records = merged
	sort.Slice(c.records, c.less)
}

// ClipTo intersects every record's slice with [0, maxLen) and drops any
// record that becomes empty as a result. Archetypes call this after a
// swap-remove shrinks their length, so a stale record can never be
// misread as describing the unrelated entity that now occupies a
// recycled slot.
func (c *ChangeList) ClipTo(maxLen int) {
	bound := New(0, maxLen)
	out := c.records[:0]
	for _, r := range c.records {
		clipped := Intersect(r.Slice, bound)
		if clipped.IsEmpty() {
			continue
		}
		r.Slice = clipped
		out = append(out, r)
	}
	c.records = out
}

// AsChangedSet materialises the set of slot indices touched by any record
// newer than fromTick, regardless of kind. Used only by tests, per
// spec.md §4.2.
func (c *ChangeList) AsChangedSet(fromTick uint32) map[int]struct{} {
	out := make(map[int]struct{})
	for _, r := range c.records {
		if r.Tick <= fromTick {
			continue
		}
		for i := r.Slice.Start; i < r.Slice.End; i++ {
			out[i] = struct{}{}
		}
	}
	return out
}

// Len reports the number of raw records currently stored (pre-Get
// filtering), mainly useful for tests asserting coalescence behaviour.
func (c *ChangeList) Len() int { return len(c.records) }
