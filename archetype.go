package loom

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/loomware/loom/slot"
)

// columnEntry bundles one component's storage with its borrow cell and the
// vtable that produced it.
type columnEntry struct {
	col  column
	cell *borrowCell
	vt   *vtable
}

// changeEntry bundles one component's change log with its own, separate
// borrow cell: spec.md §5 treats "read the data" and "read the change log"
// as independent borrows, so a system scanning for modifications doesn't
// contend with one reading values.
type changeEntry struct {
	list *slot.ChangeList
	cell *borrowCell
}

// archetype is the columnar store for every live entity sharing one exact
// Signature, per spec.md §3: a dense entity column plus one dense column
// per component, all the same length, with swap-remove used throughout so
// no slot is ever left with a hole. An archetype owns its columns and
// change lists; it knows nothing about the entity index or other
// archetypes -- World orchestrates cross-archetype moves and index upkeep
// using the slot numbers these methods hand back.
type archetype struct {
	id        archetypeID
	signature Signature
	entities  []EntityID
	columns   map[ComponentID]*columnEntry
	changes   map[ComponentID]*changeEntry
}

func newArchetype(id archetypeID, sig Signature, sch *schema) *archetype {
	a := &archetype{
		id:        id,
		signature: sig,
		columns:   make(map[ComponentID]*columnEntry, sig.Len()),
		changes:   make(map[ComponentID]*changeEntry, sig.Len()),
	}
	for _, cid := range sig.IDs() {
		vt, ok := resolveVTable(sch, cid)
		if !ok {
			panic(bark.AddTrace(fmt.Errorf("loom: archetype built with unregistered component id %v", cid)))
		}
		a.columns[cid] = &columnEntry{
			col:  vt.newColumn(0),
			cell: newBorrowCell(vt.name),
			vt:   vt,
		}
		a.changes[cid] = &changeEntry{
			list: slot.NewChangeList(),
			cell: newBorrowCell(vt.name + "#changes"),
		}
	}
	return a
}

// Len reports the number of live entities in the archetype.
func (a *archetype) Len() int { return len(a.entities) }

func (a *archetype) componentColumn(id ComponentID) (*columnEntry, bool) {
	ce, ok := a.columns[id]
	return ce, ok
}

func (a *archetype) componentChanges(id ComponentID) (*changeEntry, bool) {
	ce, ok := a.changes[id]
	return ce, ok
}

// EntityAt returns the entity occupying slot i.
func (a *archetype) EntityAt(i int) EntityID { return a.entities[i] }

// Push appends a new row for id, initialising any component present in
// values and zero-initialising the rest, and emits an Inserted record at
// tick for every component in the archetype's signature. Returns the new
// slot index.
func (a *archetype) Push(tick uint32, id EntityID, values map[ComponentID]any) int {
	s := len(a.entities)
	a.entities = append(a.entities, id)
	for _, cid := range a.signature.IDs() {
		ce := a.columns[cid]
		ce.col.Grow(1)
		if v, ok := values[cid]; ok {
			ce.col.setAny(s, v)
		}
		a.changes[cid].list.Set(slot.Record{Slice: slot.New(s, s+1), Tick: tick, Kind: slot.Inserted})
	}
	return s
}

// emitRemoved records a Removed entry at tick for each of the given
// components, at the given slot.
func (a *archetype) emitRemoved(tick uint32, s int, ids []ComponentID) {
	for _, cid := range ids {
		if ce, ok := a.changes[cid]; ok {
			ce.list.Set(slot.Record{Slice: slot.New(s, s+1), Tick: tick, Kind: slot.Removed})
		}
	}
}

// emitModified records a Modified entry at tick for the given component at
// slot s. Called by World.Set once the new value has been written.
func (a *archetype) emitModified(tick uint32, s int, id ComponentID) {
	if ce, ok := a.changes[id]; ok {
		ce.list.Set(slot.Record{Slice: slot.New(s, s+1), Tick: tick, Kind: slot.Modified})
	}
}

// removeRow physically swap-removes slot s from every column and the
// entity list, then clips every change list to the new length, dropping
// records for slots past the end (including the moved entity's records at
// the old last slot, and any record just written at s when s was last).
// Records at s itself are left as they are and now sit on the slot of the
// entity moved into it. It does not emit Removed records itself -- callers
// decide which components, if any, that applies to.
func (a *archetype) removeRow(s int) (removedID EntityID, movedEntity EntityID, moved bool) {
	removedID = a.entities[s]
	last := len(a.entities) - 1
	for _, ce := range a.columns {
		ce.col.SwapRemove(s)
	}
	moved = s != last
	if moved {
		movedEntity = a.entities[last]
		a.entities[s] = movedEntity
	}
	a.entities = a.entities[:last]
	newLen := len(a.entities)
	for _, ce := range a.changes {
		ce.list.ClipTo(newLen)
	}
	return removedID, movedEntity, moved
}

// SwapRemove drops the entity at slot s entirely: every component emits a
// Removed record at tick before the physical removal happens. Used for
// despawn.
func (a *archetype) SwapRemove(tick uint32, s int) (removedID EntityID, movedEntity EntityID, moved bool) {
	a.emitRemoved(tick, s, a.signature.IDs())
	return a.removeRow(s)
}

// MoveTo migrates the entity at slot s in a to dst, per spec.md §4.3:
// components present in both signatures are moved byte-for-byte with no
// change record; components dropped by the move emit Removed in a;
// components newly introduced emit Inserted in dst, initialised from
// extra when present or zero otherwise. Returns the entity's new slot in
// dst plus the usual swap-remove bookkeeping for a.
func (a *archetype) MoveTo(tick uint32, s int, dst *archetype, extra map[ComponentID]any) (dstSlot int, removedID EntityID, movedEntity EntityID, moved bool) {
	removedID = a.entities[s]
	dstSlot = len(dst.entities)
	dst.entities = append(dst.entities, removedID)

	for _, cid := range dst.signature.IDs() {
		dce := dst.columns[cid]
		if srcCe, ok := a.columns[cid]; ok {
			srcCe.col.moveOneTo(s, dce.col)
			continue
		}
		dce.col.Grow(1)
		if v, ok := extra[cid]; ok {
			dce.col.setAny(dstSlot, v)
		}
		dst.changes[cid].list.Set(slot.Record{Slice: slot.New(dstSlot, dstSlot+1), Tick: tick, Kind: slot.Inserted})
	}

	var dropped []ComponentID
	for _, cid := range a.signature.IDs() {
		if !dst.signature.Has(cid) {
			dropped = append(dropped, cid)
		}
	}
	a.emitRemoved(tick, s, dropped)

	removedID, movedEntity, moved = a.removeRow(s)
	return dstSlot, removedID, movedEntity, moved
}

// columnValueAt fetches a typed pointer into column id at slot s, or
// (nil, false) if the column is absent or T doesn't match its stored type.
// A free function rather than a method because Go forbids type parameters
// on methods.
func columnValueAt[T any](a *archetype, id ComponentID, s int) (*T, bool) {
	ce, ok := a.columns[id]
	if !ok {
		return nil, false
	}
	tc, ok := ce.col.(*typedColumn[T])
	if !ok || s < 0 || s >= tc.Len() {
		return nil, false
	}
	return tc.At(s), true
}
