package slot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChangeListCoalescesTail(t *testing.T) {
	cl := NewChangeList()
	cl.Set(Record{Slice: New(0, 10), Tick: 1, Kind: Inserted})
	cl.Set(Record{Slice: New(10, 20), Tick: 1, Kind: Inserted})

	got := cl.Get(Inserted)
	want := []Record{{Slice: New(0, 20), Tick: 1, Kind: Inserted}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coalesced records mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeListDoesNotCoalesceAcrossTicksOrKinds(t *testing.T) {
	cl := NewChangeList()
	cl.Set(Record{Slice: New(0, 10), Tick: 1, Kind: Inserted})
	cl.Set(Record{Slice: New(10, 20), Tick: 2, Kind: Inserted})
	cl.Set(Record{Slice: New(20, 30), Tick: 2, Kind: Removed})

	if got := len(cl.Get(Inserted)); got != 2 {
		t.Errorf("expected 2 inserted records, got %d", got)
	}
	if got := len(cl.Get(Removed)); got != 1 {
		t.Errorf("expected 1 removed record, got %d", got)
	}
}

// TestChangeListFilterScenario mirrors spec.md S3: given L1 = [(10..20,
// t=3), (30..80, t=3), (100..200, t=4)] and old_tick=2, the modified
// records newer than old_tick should come back as exactly those three
// slices.
func TestChangeListFilterScenario(t *testing.T) {
	cl := NewChangeList()
	cl.Set(Record{Slice: New(10, 20), Tick: 3, Kind: Modified})
	cl.Set(Record{Slice: New(30, 80), Tick: 3, Kind: Modified})
	cl.Set(Record{Slice: New(100, 200), Tick: 4, Kind: Modified})

	changed := cl.AsChangedSet(2)
	for _, s := range []Slice{New(10, 20), New(30, 80), New(100, 200)} {
		for i := s.Start; i < s.End; i++ {
			if _, ok := changed[i]; !ok {
				t.Fatalf("slot %d should be in the changed set", i)
			}
		}
	}
	if len(changed) != 10+50+100 {
		t.Errorf("changed set size = %d, want %d", len(changed), 10+50+100)
	}
}

func TestChangeListOutOfOrderInsertStillSorts(t *testing.T) {
	cl := NewChangeList()
	cl.Set(Record{Slice: New(100, 200), Tick: 4, Kind: Modified})
	cl.Set(Record{Slice: New(10, 20), Tick: 3, Kind: Modified})
	cl.Set(Record{Slice: New(30, 80), Tick: 3, Kind: Modified})

	got := cl.Get(Modified)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Tick < prev.Tick || (cur.Tick == prev.Tick && cur.Slice.Start < prev.Slice.Start) {
			t.Fatalf("records not sorted by (tick, start): %+v", got)
		}
	}
}

func TestChangeListCompactMergesNonTailRuns(t *testing.T) {
	cl := NewChangeList()
	cl.records = []Record{
		{Slice: New(0, 10), Tick: 1, Kind: Modified},
		{Slice: New(20, 30), Tick: 2, Kind: Modified},
		{Slice: New(10, 20), Tick: 1, Kind: Modified},
	}
	cl.Compact()

	got := cl.Get(Modified)
	want := []Record{
		{Slice: New(0, 20), Tick: 1, Kind: Modified},
		{Slice: New(20, 30), Tick: 2, Kind: Modified},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compact() mismatch (-want +got):\n%s", diff)
	}
}
