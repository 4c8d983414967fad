package loom

import (
	"testing"

	"github.com/loomware/loom/slot"
)

func TestHasLacksFilters(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	withBoth, _ := w.Spawn(With(pos, testPosition{}), With(vel, testVelocity{}))
	posOnly, _ := w.Spawn(With(pos, testPosition{}))

	q := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Lacks(vel))
	var got []EntityID
	for range q.Iter(w) {
		got = append(got, posOnly)
	}
	if len(got) != 1 {
		t.Fatalf("Lacks(vel) should match exactly the position-only entity, got %d", len(got))
	}

	q2 := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Has(vel))
	n := 0
	for range q2.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("Has(vel) should match exactly the entity carrying both, got %d", n)
	}
	_ = withBoth
}

func TestAndOrNotCombinators(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	_, _ = w.Spawn(With(pos, testPosition{}), With(vel, testVelocity{}))
	_, _ = w.Spawn(With(pos, testPosition{}))
	_, _ = w.Spawn(With(vel, testVelocity{}))

	andQ := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(And(Has(pos), Has(vel)))
	n := 0
	for range andQ.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("And(Has(pos), Has(vel)) expected 1 match, got %d", n)
	}

	orQ := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Or(Has(pos), Has(vel)))
	n = 0
	for range orQ.Iter(w) {
		n++
	}
	if n != 2 {
		t.Fatalf("Or(Has(pos), Has(vel)) over position-fetch archetypes expected 2 matches, got %d", n)
	}

	notQ := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Not(Has(vel)))
	n = 0
	for range notQ.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("Not(Has(vel)) expected 1 match (the position-only entity), got %d", n)
	}
}

func TestInsertedFilterFiresOnceAtSpawn(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	_, _ = w.Spawn(With(pos, testPosition{X: 1}))

	q := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Inserted(pos))
	n := 0
	for range q.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("expected the freshly spawned entity to show up as Inserted, got %d", n)
	}
}

func TestRemoveComponentEmitsRemovedInSourceArchetype(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()
	a, _ := w.Spawn(With(pos, testPosition{}), With(vel, testVelocity{}))
	_, _ = w.Spawn(With(pos, testPosition{}), With(vel, testVelocity{}))

	srcLoc, ok := w.index.get(a)
	if !ok {
		t.Fatalf("entity a should be alive before removal")
	}
	srcArch := w.byID[srcLoc.archetype]

	if err := RemoveComponent(w, a, vel); err != nil {
		t.Fatalf("RemoveComponent: %v", err)
	}

	velCid := vel.ID(w)
	che, ok := srcArch.componentChanges(velCid)
	if !ok {
		t.Fatalf("source archetype should still carry a change list for vel")
	}
	if len(che.list.Get(slot.Removed)) == 0 {
		t.Fatalf("expected at least one Removed record in the source archetype's vel change list")
	}
}
