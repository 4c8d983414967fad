package loom

import "testing"

type testPosition struct{ X, Y int }
type testVelocity struct{ X, Y int }

func TestSpawnDespawnRecyclesIndexWithNewGeneration(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()

	id1, err := w.Spawn(With(pos, testPosition{X: 1}))
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := w.Despawn(id1); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if w.IsAlive(id1) {
		t.Fatalf("id1 should no longer be alive")
	}

	id2, err := w.Spawn(With(pos, testPosition{X: 2}))
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if id1.Index() != id2.Index() {
		t.Fatalf("expected index reuse, got %d and %d", id1.Index(), id2.Index())
	}
	if id1.Generation() == id2.Generation() {
		t.Fatalf("expected distinct generations, both were %d", id1.Generation())
	}
	if id1 == id2 {
		t.Fatalf("recycled entity ids must not compare equal")
	}
}

func TestDespawnMovesLastEntityIntoFreedSlot(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()

	a, _ := w.Spawn(With(pos, testPosition{X: 1}))
	b, _ := w.Spawn(With(pos, testPosition{X: 2}))
	c, _ := w.Spawn(With(pos, testPosition{X: 3}))

	if err := w.Despawn(a); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	for _, id := range []EntityID{b, c} {
		if !w.IsAlive(id) {
			t.Fatalf("entity %v should still be alive after an unrelated despawn", id)
		}
	}
	got, err := GetComponent(w, c, pos)
	if err != nil {
		t.Fatalf("GetComponent: %v", err)
	}
	if got.X != 3 {
		t.Fatalf("entity c's component value corrupted after swap-remove: got %+v", got)
	}
}

func TestSetComponentMigratesArchetype(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	id, _ := w.Spawn(With(pos, testPosition{X: 1}))
	if HasComponent(w, id, vel) {
		t.Fatalf("entity should not start with velocity")
	}
	if err := SetComponent(w, id, vel, testVelocity{X: 5}); err != nil {
		t.Fatalf("SetComponent: %v", err)
	}
	if !HasComponent(w, id, vel) {
		t.Fatalf("entity should carry velocity after SetComponent")
	}
	p, err := GetComponent(w, id, pos)
	if err != nil || p.X != 1 {
		t.Fatalf("position should survive the migration, got %+v err=%v", p, err)
	}
}

func TestRemoveComponentMigratesArchetype(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	id, _ := w.Spawn(With(pos, testPosition{X: 1}), With(vel, testVelocity{X: 1}))
	if err := RemoveComponent(w, id, vel); err != nil {
		t.Fatalf("RemoveComponent: %v", err)
	}
	if HasComponent(w, id, vel) {
		t.Fatalf("velocity should be gone after RemoveComponent")
	}
	if !HasComponent(w, id, pos) {
		t.Fatalf("position should survive removing an unrelated component")
	}
}

func TestSpawnFailsWhileLocked(t *testing.T) {
	w := NewWorld()
	w.AddLock(0)
	defer w.RemoveLock(0)

	if _, err := w.Spawn(); err == nil {
		t.Fatalf("expected Spawn to fail while locked")
	}
}

func TestResourceRoundTrip(t *testing.T) {
	w := NewWorld()
	type frameCount struct{ N int }
	fc := NewComponent[frameCount]()

	if err := AddResource(w, fc, frameCount{N: 1}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	v, err := Res(w, fc)
	if err != nil || v.N != 1 {
		t.Fatalf("Res: got %+v, err=%v", v, err)
	}
	v2, set, err := ResMut(w, fc)
	if err != nil || v2.N != 1 {
		t.Fatalf("ResMut: got %+v, err=%v", v2, err)
	}
	if err := set(frameCount{N: 2}); err != nil {
		t.Fatalf("ResMut setter: %v", err)
	}
	v3, _ := Res(w, fc)
	if v3.N != 2 {
		t.Fatalf("expected updated resource value, got %+v", v3)
	}
}
