package loom

import "github.com/loomware/loom/slot"

// Fetch is a type-level description of what one query parameter reads
// from an archetype, per spec.md §4.6. Item is the value a fully prepared
// fetch hands back for a given slot -- a value copy for a read-only fetch,
// a pointer for a mutable one.
type Fetch[Item any] interface {
	Matches(w *World, sig Signature) bool
	Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFetch[Item], bool)
	Access(w *World, arch *archetype) []Access
	Describe() string
	Mutable() bool
}

// PreparedFetch holds whatever borrows Prepare acquired, for the lifetime
// of one archetype's iteration.
type PreparedFetch[Item any] interface {
	// FilterSlots returns the first sub-slice of s this fetch is willing
	// to yield -- always the whole of s for a plain component read/write,
	// narrower for a fetch composed with a change filter.
	FilterSlots(s slot.Slice) slot.Slice
	Fetch(slotIdx int) Item
	// SetVisited is called once per yielded slice after a mutable fetch's
	// items have been handed to the caller, recording a Modified entry.
	// A no-op for read-only fetches.
	SetVisited(s slot.Slice, newTick uint32)
	Release()
}

// Read fetches component C by value.
type Read[T any] struct{ C Component[T] }

func (r Read[T]) Matches(w *World, sig Signature) bool { return sig.Has(r.C.ID(w)) }
func (r Read[T]) Mutable() bool                        { return false }
func (r Read[T]) Describe() string                     { return "read(" + r.C.Name() + ")" }

func (r Read[T]) Access(w *World, arch *archetype) []Access {
	return []Access{{Kind: AccessColumn, Archetype: arch.id, Component: r.C.ID(w), Mutable: false}}
}

func (r Read[T]) Prepare(w *World, arch *archetype, oldTick uint32) (PreparedFetch[T], bool) {
	cid := r.C.ID(w)
	ce, ok := arch.componentColumn(cid)
	if !ok {
		return nil, false
	}
	release, err := ce.cell.TryBorrow()
	if err != nil {
		return nil, false
	}
	tc, ok := ce.col.(*typedColumn[T])
	if !ok {
		release()
		return nil, false
	}
	return &preparedRead[T]{col: tc, release: release}, true
}

type preparedRead[T any] struct {
	col     *typedColumn[T]
	release func()
}

func (p *preparedRead[T]) FilterSlots(s slot.Slice) slot.Slice    { return s }
func (p *preparedRead[T]) Fetch(i int) T                          { return *p.col.At(i) }
func (p *preparedRead[T]) SetVisited(s slot.Slice, tick uint32)   {}
func (p *preparedRead[T]) Release()                               { p.release() }

// Write fetches component C by pointer, and marks every slot it yields as
// Modified once the caller has finished with a given slice.
type Write[T any] struct{ C Component[T] }

func (w Write[T]) Matches(world *World, sig Signature) bool { return sig.Has(w.C.ID(world)) }
func (w Write[T]) Mutable() bool                            { return true }
func (w Write[T]) Describe() string                         { return "write(" + w.C.Name() + ")" }

func (w Write[T]) Access(world *World, arch *archetype) []Access {
	return []Access{{Kind: AccessColumn, Archetype: arch.id, Component: w.C.ID(world), Mutable: true}}
}

func (w Write[T]) Prepare(world *World, arch *archetype, oldTick uint32) (PreparedFetch[*T], bool) {
	cid := w.C.ID(world)
	ce, ok := arch.componentColumn(cid)
	if !ok {
		return nil, false
	}
	colRelease, err := ce.cell.TryBorrowMut()
	if err != nil {
		return nil, false
	}
	che, ok := arch.componentChanges(cid)
	if !ok {
		colRelease()
		return nil, false
	}
	chRelease, err := che.cell.TryBorrowMut()
	if err != nil {
		colRelease()
		return nil, false
	}
	tc, ok := ce.col.(*typedColumn[T])
	if !ok {
		chRelease()
		colRelease()
		return nil, false
	}
	return &preparedWrite[T]{col: tc, changes: che.list, colRelease: colRelease, chRelease: chRelease}, true
}

type preparedWrite[T any] struct {
	col        *typedColumn[T]
	changes    *slot.ChangeList
	colRelease func()
	chRelease  func()
}

func (p *preparedWrite[T]) FilterSlots(s slot.Slice) slot.Slice { return s }
func (p *preparedWrite[T]) Fetch(i int) *T                      { return p.col.At(i) }

func (p *preparedWrite[T]) SetVisited(s slot.Slice, tick uint32) {
	p.changes.Set(slot.Record{Slice: s, Tick: tick, Kind: slot.Modified})
}

func (p *preparedWrite[T]) Release() {
	p.chRelease()
	p.colRelease()
}
