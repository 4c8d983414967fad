package loom

import "testing"

func TestSimpleCacheRegisterAndLookup(t *testing.T) {
	c := NewSimpleCache[string](4)

	idx, err := c.Register("alpha", "first")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected first registration to land at index 0, got %d", idx)
	}
	if got, ok := c.GetIndex("alpha"); !ok || got != 0 {
		t.Fatalf("GetIndex(alpha) = %d, %v", got, ok)
	}
	if *c.GetItem(0) != "first" {
		t.Fatalf("GetItem(0) = %q", *c.GetItem(0))
	}
	if *c.GetItem32(0) != "first" {
		t.Fatalf("GetItem32(0) = %q", *c.GetItem32(0))
	}
}

func TestSimpleCacheRegisterUpsertsExistingKey(t *testing.T) {
	c := NewSimpleCache[string](4)
	idx1, _ := c.Register("alpha", "first")
	idx2, err := c.Register("alpha", "second")
	if err != nil {
		t.Fatalf("Register (upsert): %v", err)
	}
	if idx1 != idx2 {
		t.Fatalf("expected re-registering an existing key to reuse its index, got %d then %d", idx1, idx2)
	}
	if *c.GetItem(idx2) != "second" {
		t.Fatalf("expected upsert to replace the stored value, got %q", *c.GetItem(idx2))
	}
}

func TestSimpleCacheCapacityExceeded(t *testing.T) {
	c := NewSimpleCache[int](2)
	if _, err := c.Register("a", 1); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	if _, err := c.Register("b", 2); err != nil {
		t.Fatalf("Register b: %v", err)
	}
	if _, err := c.Register("c", 3); err == nil {
		t.Fatalf("expected registering beyond capacity to error")
	}
}

func TestSimpleCacheClear(t *testing.T) {
	c := NewSimpleCache[int](4)
	_, _ = c.Register("a", 1)
	c.Clear()
	if _, ok := c.GetIndex("a"); ok {
		t.Fatalf("expected Clear to drop all entries")
	}
	if _, err := c.Register("a", 2); err != nil {
		t.Fatalf("Register after Clear: %v", err)
	}
}

func TestComponentMetadataRoundTrip(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()

	if _, ok := ComponentMetadata(w, pos, "label"); ok {
		t.Fatalf("expected no metadata before SetComponentMetadata")
	}

	if err := SetComponentMetadata(w, pos, "label", []byte("position")); err != nil {
		t.Fatalf("SetComponentMetadata: %v", err)
	}
	got, ok := ComponentMetadata(w, pos, "label")
	if !ok {
		t.Fatalf("expected metadata to be present")
	}
	if string(got) != "position" {
		t.Fatalf("expected %q, got %q", "position", got)
	}

	if err := SetComponentMetadata(w, pos, "label", []byte("replaced")); err != nil {
		t.Fatalf("SetComponentMetadata (overwrite): %v", err)
	}
	got, _ = ComponentMetadata(w, pos, "label")
	if string(got) != "replaced" {
		t.Fatalf("expected overwrite to stick, got %q", got)
	}
}

func TestComponentMetadataDistinctKeys(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	vel := NewComponent[testVelocity]()

	_ = SetComponentMetadata(w, pos, "label", []byte("pos"))
	_ = SetComponentMetadata(w, vel, "label", []byte("vel"))

	gotPos, _ := ComponentMetadata(w, pos, "label")
	gotVel, _ := ComponentMetadata(w, vel, "label")
	if string(gotPos) != "pos" || string(gotVel) != "vel" {
		t.Fatalf("metadata keyed on different components should not collide, got %q and %q", gotPos, gotVel)
	}
}
