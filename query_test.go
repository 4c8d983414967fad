package loom

import "testing"

func TestQueryIterYieldsMatchingEntitiesOnly(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	matchID, _ := w.Spawn(With(pos, testPosition{X: 1}), With(vel, testVelocity{X: 1}))
	_, _ = w.Spawn(With(pos, testPosition{X: 2}))

	q := Query1[testPosition](Read[testPosition]{C: pos})
	q.Filter(Has(vel))

	var seen []EntityID
	for range q.Iter(w) {
		seen = append(seen, matchID)
	}
	if len(seen) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(seen))
	}
}

func TestQueryWriteMarksModified(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	id, _ := w.Spawn(With(pos, testPosition{X: 0}))

	startTick := w.currentTick()

	q := NewQuery[*testPosition](Write[testPosition]{C: pos})
	for p := range q.Iter(w) {
		p.X = 42
	}

	got, err := GetComponent(w, id, pos)
	if err != nil || got.X != 42 {
		t.Fatalf("expected write to stick, got %+v err=%v", got, err)
	}

	modQ := NewQuery[testPosition](Read[testPosition]{C: pos}).Filter(Modified(pos))
	var count int
	for range modQ.Iter(w) {
		count++
	}
	if count != 1 {
		t.Fatalf("expected the written entity to show up as Modified, got %d matches", count)
	}
	if w.currentTick() <= startTick {
		t.Fatalf("mutable iteration should have advanced the tick")
	}
}

func TestQuery2PairsComponents(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()
	_, _ = w.Spawn(With(pos, testPosition{X: 3}), With(vel, testVelocity{X: 4}))

	q := Query2(Read[testPosition]{C: pos}, Read[testVelocity]{C: vel})
	var got Pair[testPosition, testVelocity]
	n := 0
	for pair := range q.Iter(w) {
		got = pair
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 result, got %d", n)
	}
	if got.A.X != 3 || got.B.X != 4 {
		t.Fatalf("unexpected pair contents: %+v", got)
	}
}

func TestQuery3TriplesComponents(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()
	tag := NewComponent[int]()

	matchID, _ := w.Spawn(With(pos, testPosition{X: 1}), With(vel, testVelocity{X: 2}), With(tag, 9))
	_, _ = w.Spawn(With(pos, testPosition{X: 5}), With(vel, testVelocity{X: 6}))

	q := Query3(Read[testPosition]{C: pos}, Read[testVelocity]{C: vel}, Read[int]{C: tag})
	var got Triple[testPosition, testVelocity, int]
	n := 0
	for tr := range q.Iter(w) {
		got = tr
		n++
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 match (the entity carrying all three components), got %d", n)
	}
	if got.A.X != 1 || got.B.X != 2 || got.C != 9 {
		t.Fatalf("unexpected triple contents: %+v", got)
	}
	_ = matchID
}

func TestQueryCacheInvalidatesOnStructuralChange(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	q := Query1[testPosition](Read[testPosition]{C: pos})

	n := 0
	for range q.Iter(w) {
		n++
	}
	if n != 0 {
		t.Fatalf("expected 0 matches before any spawn, got %d", n)
	}

	_, _ = w.Spawn(With(pos, testPosition{X: 1}))

	n = 0
	for range q.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("expected the query to observe the newly spawned entity, got %d", n)
	}
}

func TestQueryGetSingleEntity(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	id, _ := w.Spawn(With(pos, testPosition{X: 9}))

	q := NewQuery[testPosition](Read[testPosition]{C: pos})
	got, err := q.Get(w, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.X != 9 {
		t.Fatalf("unexpected value: %+v", got)
	}

	other, _ := w.Spawn()
	if _, err := q.Get(w, other); err == nil {
		t.Fatalf("expected Get to fail for an entity missing the fetched component")
	}
}
