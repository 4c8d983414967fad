package loom

import "github.com/loomware/loom/slot"

// Filter is a Fetch that yields no item, used purely to narrow the slots
// (or whole archetypes) a Query visits. spec.md §4.6 frames it as "a Fetch
// returning ()".
type Filter interface {
	Matches(w *World, sig Signature) bool
	Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool)
	Access(w *World, arch *archetype) []Access
	Describe() string
}

// PreparedFilter narrows the slice a Query iterates, one call at a time.
type PreparedFilter interface {
	FilterSlots(s slot.Slice) slot.Slice
	Release()
}

// staticFilter is the PreparedFilter for archetype-level-only decisions
// (Has, Lacks, All, Nothing): it either passes the whole input slice
// through unchanged or yields nothing.
type staticFilter struct{ pass bool }

func (f staticFilter) FilterSlots(s slot.Slice) slot.Slice {
	if f.pass {
		return s
	}
	return slot.Empty()
}
func (staticFilter) Release() {}

// Has requires the archetype to carry component ref; it never narrows
// slices once an archetype has matched.
func Has(ref ComponentRef) Filter { return hasFilter{ref} }

type hasFilter struct{ ref ComponentRef }

func (f hasFilter) Matches(w *World, sig Signature) bool { return sig.Has(f.ref.ID(w)) }
func (f hasFilter) Describe() string                     { return "has(" + f.ref.Name() + ")" }
func (f hasFilter) Access(w *World, arch *archetype) []Access { return nil }
func (f hasFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	return staticFilter{pass: arch.signature.Has(f.ref.ID(w))}, true
}

// Lacks requires the archetype to NOT carry component ref.
func Lacks(ref ComponentRef) Filter { return lacksFilter{ref} }

type lacksFilter struct{ ref ComponentRef }

func (f lacksFilter) Matches(w *World, sig Signature) bool { return !sig.Has(f.ref.ID(w)) }
func (f lacksFilter) Describe() string                     { return "lacks(" + f.ref.Name() + ")" }
func (f lacksFilter) Access(w *World, arch *archetype) []Access { return nil }
func (f lacksFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	return staticFilter{pass: !arch.signature.Has(f.ref.ID(w))}, true
}

// All matches every archetype and never narrows a slice.
var All Filter = allFilter{}

type allFilter struct{}

func (allFilter) Matches(*World, Signature) bool { return true }
func (allFilter) Describe() string               { return "all" }
func (allFilter) Access(*World, *archetype) []Access { return nil }
func (allFilter) Prepare(*World, *archetype, uint32) (PreparedFilter, bool) {
	return staticFilter{pass: true}, true
}

// Nothing matches no archetype.
var Nothing Filter = nothingFilter{}

type nothingFilter struct{}

func (nothingFilter) Matches(*World, Signature) bool { return false }
func (nothingFilter) Describe() string               { return "nothing" }
func (nothingFilter) Access(*World, *archetype) []Access { return nil }
func (nothingFilter) Prepare(*World, *archetype, uint32) (PreparedFilter, bool) {
	return nil, false
}

// And matches archetypes satisfying both l and r, and narrows slices to
// their intersection.
func And(l, r Filter) Filter { return andFilter{l, r} }

type andFilter struct{ l, r Filter }

func (f andFilter) Matches(w *World, sig Signature) bool { return f.l.Matches(w, sig) && f.r.Matches(w, sig) }
func (f andFilter) Describe() string                     { return "(" + f.l.Describe() + " and " + f.r.Describe() + ")" }
func (f andFilter) Access(w *World, arch *archetype) []Access {
	return append(f.l.Access(w, arch), f.r.Access(w, arch)...)
}
func (f andFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	pl, ok := f.l.Prepare(w, arch, oldTick)
	if !ok {
		return nil, false
	}
	pr, ok := f.r.Prepare(w, arch, oldTick)
	if !ok {
		pl.Release()
		return nil, false
	}
	return &preparedAnd{l: pl, r: pr}, true
}

type preparedAnd struct{ l, r PreparedFilter }

func (p *preparedAnd) Release() { p.l.Release(); p.r.Release() }

// FilterSlots implements spec.md §4.6's And algorithm via driveIntersect.
func (p *preparedAnd) FilterSlots(s slot.Slice) slot.Slice {
	return driveIntersect(p.l.FilterSlots, p.r.FilterSlots, s)
}

// driveIntersect implements spec.md §4.6's And algorithm in general form:
// intersect both sides' output over window s, and when that's empty but at
// least one side produced a candidate further along, push the search
// window forward to that candidate and retry. The final guard is what
// turns "neither side can make progress" into termination instead of an
// infinite loop. Shared by And and by Query's fetch/filter combination.
func driveIntersect(a, b func(slot.Slice) slot.Slice, s slot.Slice) slot.Slice {
	for {
		l := a(s)
		r := b(s)
		if inter := slot.Intersect(l, r); !inter.IsEmpty() {
			return inter
		}
		if l.IsEmpty() && r.IsEmpty() {
			return slot.Empty()
		}
		lstart, rstart := s.End, s.End
		if !l.IsEmpty() {
			lstart = l.Start
		}
		if !r.IsEmpty() {
			rstart = r.Start
		}
		next := lstart
		if rstart > next {
			next = rstart
		}
		if next <= s.Start || next >= s.End {
			return slot.Empty()
		}
		s = slot.New(next, s.End)
	}
}

// Or matches archetypes satisfying either l or r, and narrows slices to
// their union when contiguous.
func Or(l, r Filter) Filter { return orFilter{l, r} }

type orFilter struct{ l, r Filter }

func (f orFilter) Matches(w *World, sig Signature) bool { return f.l.Matches(w, sig) || f.r.Matches(w, sig) }
func (f orFilter) Describe() string                     { return "(" + f.l.Describe() + " or " + f.r.Describe() + ")" }
func (f orFilter) Access(w *World, arch *archetype) []Access {
	return append(f.l.Access(w, arch), f.r.Access(w, arch)...)
}
func (f orFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	pl, lok := f.l.Prepare(w, arch, oldTick)
	pr, rok := f.r.Prepare(w, arch, oldTick)
	if !lok && !rok {
		return nil, false
	}
	return &preparedOr{l: pl, lok: lok, r: pr, rok: rok}, true
}

type preparedOr struct {
	l    PreparedFilter
	lok  bool
	r    PreparedFilter
	rok  bool
}

func (p *preparedOr) Release() {
	if p.lok {
		p.l.Release()
	}
	if p.rok {
		p.r.Release()
	}
}

func (p *preparedOr) FilterSlots(s slot.Slice) slot.Slice {
	var l, r slot.Slice
	if p.lok {
		l = p.l.FilterSlots(s)
	}
	if p.rok {
		r = p.r.FilterSlots(s)
	}
	if u, ok := slot.Union(l, r); ok {
		return u
	}
	if !l.IsEmpty() {
		return l
	}
	return r
}

// Not matches every archetype and narrows slices to the complement of
// what child would yield.
func Not(child Filter) Filter { return notFilter{child} }

type notFilter struct{ child Filter }

func (f notFilter) Matches(w *World, sig Signature) bool        { return true }
func (f notFilter) Describe() string                            { return "not(" + f.child.Describe() + ")" }
func (f notFilter) Access(w *World, arch *archetype) []Access   { return f.child.Access(w, arch) }
func (f notFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	child, ok := f.child.Prepare(w, arch, oldTick)
	if !ok {
		// child declined this archetype entirely: Not passes everything.
		return staticFilter{pass: true}, true
	}
	return &preparedNot{child: child}, true
}

type preparedNot struct{ child PreparedFilter }

func (p *preparedNot) Release() { p.child.Release() }

func (p *preparedNot) FilterSlots(s slot.Slice) slot.Slice {
	excluded := p.child.FilterSlots(s)
	if excluded.IsEmpty() {
		return s
	}
	if d, ok := slot.Difference(s, excluded); ok {
		return d
	}
	left, _, right := slot.SplitWith(s, excluded)
	if !left.IsEmpty() {
		return left
	}
	return right
}

// Modified, Inserted and Removed yield the slot ranges a component's
// change list recorded of the given kind since oldTick, per spec.md
// §4.6's change-filter cursor algorithm. Modified also yields Inserted
// ranges, since a freshly inserted value counts as modified too.
func Modified(ref ComponentRef) Filter { return changeFilter{ref: ref, kind: slot.Modified} }
func Inserted(ref ComponentRef) Filter { return changeFilter{ref: ref, kind: slot.Inserted} }
func Removed(ref ComponentRef) Filter  { return changeFilter{ref: ref, kind: slot.Removed} }

type changeFilter struct {
	ref  ComponentRef
	kind slot.Kind
}

func (f changeFilter) Matches(w *World, sig Signature) bool { return sig.Has(f.ref.ID(w)) }
func (f changeFilter) Describe() string                     { return f.kind.String() + "(" + f.ref.Name() + ")" }
func (f changeFilter) Access(w *World, arch *archetype) []Access {
	return []Access{{Kind: AccessChangeEvent, Archetype: arch.id, Component: f.ref.ID(w), Mutable: false}}
}

func (f changeFilter) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFilter, bool) {
	cid := f.ref.ID(w)
	ce, ok := arch.componentChanges(cid)
	if !ok {
		return nil, false
	}
	release, err := ce.cell.TryBorrow()
	if err != nil {
		return nil, false
	}
	kinds := []slot.Kind{f.kind}
	if f.kind == slot.Modified {
		kinds = append(kinds, slot.Inserted)
	}
	records := make([]slot.Record, 0)
	for _, k := range kinds {
		for _, r := range ce.list.Get(k) {
			if r.Tick > oldTick {
				records = append(records, r)
			}
		}
	}
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && records[j-1].Slice.Start > records[j].Slice.Start; j-- {
			records[j-1], records[j] = records[j], records[j-1]
		}
	}
	return &preparedChangeFilter{records: records, release: release}, true
}

type preparedChangeFilter struct {
	records []slot.Record
	cursor  int
	current *slot.Record
	release func()
}

func (p *preparedChangeFilter) Release() { p.release() }

func (p *preparedChangeFilter) FilterSlots(s slot.Slice) slot.Slice {
	if p.current != nil {
		if p.current.Slice.Overlaps(s) {
			return slot.Intersect(p.current.Slice, s)
		}
		if s.Start >= p.current.Slice.End {
			p.current = nil
			p.cursor++
		}
	}
	for p.cursor < len(p.records) {
		r := p.records[p.cursor]
		if r.Slice.End <= s.Start {
			p.cursor++
			continue
		}
		if !r.Slice.Overlaps(s) {
			break
		}
		p.current = &p.records[p.cursor]
		return slot.Intersect(r.Slice, s)
	}
	return slot.Empty()
}
