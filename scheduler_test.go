package loom

import "testing"

func TestScheduleBatchesNonConflictingReaders(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	_, _ = w.Spawn(With(pos, testPosition{X: 1}))

	readA := System1("readA", UseQuery(NewQuery[testPosition](Read[testPosition]{C: pos})),
		func(ctx *ExecContext, q *Query[testPosition]) error {
			for range q.Iter(ctx.World) {
			}
			return nil
		})
	readB := System1("readB", UseQuery(NewQuery[testPosition](Read[testPosition]{C: pos})),
		func(ctx *ExecContext, q *Query[testPosition]) error {
			for range q.Iter(ctx.World) {
			}
			return nil
		})

	s := NewSchedule().WithSystem(readA).WithSystem(readB)
	batches := s.batches(w)
	if len(batches) != 1 {
		t.Fatalf("two read-only systems over the same component should share one batch, got %d batches", len(batches))
	}
	if len(batches[0].systems) != 2 {
		t.Fatalf("expected both systems in the shared batch, got %d", len(batches[0].systems))
	}
}

func TestScheduleSeparatesConflictingWriters(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	_, _ = w.Spawn(With(pos, testPosition{X: 1}))

	writeA := System1("writeA", UseQuery(NewQuery[*testPosition](Write[testPosition]{C: pos})),
		func(ctx *ExecContext, q *Query[*testPosition]) error {
			for p := range q.Iter(ctx.World) {
				p.X++
			}
			return nil
		})
	writeB := System1("writeB", UseQuery(NewQuery[*testPosition](Write[testPosition]{C: pos})),
		func(ctx *ExecContext, q *Query[*testPosition]) error {
			for p := range q.Iter(ctx.World) {
				p.X++
			}
			return nil
		})

	s := NewSchedule().WithSystem(writeA).WithSystem(writeB)
	batches := s.batches(w)
	if len(batches) != 2 {
		t.Fatalf("two systems writing the same component must not share a batch, got %d batches", len(batches))
	}
}

func TestExecuteSeqRunsEverySystemInOrder(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	id, _ := w.Spawn(With(pos, testPosition{X: 0}))

	var order []string
	record := func(name string) *System {
		return System0(name, func(ctx *ExecContext) error {
			order = append(order, name)
			return nil
		})
	}
	s := NewSchedule().WithSystem(record("first")).WithSystem(record("second")).WithSystem(record("third"))
	if err := s.ExecuteSeq(w); err != nil {
		t.Fatalf("ExecuteSeq: %v", err)
	}
	if len(order) != 3 || order[0] != "first" || order[2] != "third" {
		t.Fatalf("expected systems to run in declared order, got %v", order)
	}
	_ = id
}

func TestExecuteSeqDrainsCommandBufferBetweenBatches(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()

	spawner := System1("spawner", CommandBufferExclusive{}, func(ctx *ExecContext, cb *CommandBuffer) error {
		cb.Spawn(With(pos, testPosition{X: 7}))
		return nil
	})
	counter := NewQuery[testPosition](Read[testPosition]{C: pos})
	reporter := System1("reporter", UseQuery(counter), func(ctx *ExecContext, q *Query[testPosition]) error {
		return nil
	})

	s := NewSchedule().WithSystem(spawner).WithSystem(reporter)
	if err := s.ExecuteSeq(w); err != nil {
		t.Fatalf("ExecuteSeq: %v", err)
	}

	n := 0
	for range counter.Iter(w) {
		n++
	}
	if n != 1 {
		t.Fatalf("expected the command buffer spawn to have been applied, got %d entities", n)
	}
}

func TestExecuteParReturnsSystemError(t *testing.T) {
	w := NewWorld()
	boom := errTest("kaboom")
	failing := System0("failing", func(ctx *ExecContext) error { return boom })
	s := NewSchedule().WithSystem(failing)
	if err := s.ExecutePar(w); err == nil {
		t.Fatalf("expected an error from ExecutePar")
	}
}
