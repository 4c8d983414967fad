package loom

import "testing"

func TestSystem1RunsAndReportsAccess(t *testing.T) {
	w := NewWorld()
	pos := NewComponent[testPosition]()
	id, _ := w.Spawn(With(pos, testPosition{X: 1}))

	q := NewQuery[*testPosition](Write[testPosition]{C: pos})
	ran := false
	sys := System1(
		"bump-x",
		UseQuery(q),
		func(ctx *ExecContext, q *Query[*testPosition]) error {
			for p := range q.Iter(ctx.World) {
				p.X++
			}
			ran = true
			return nil
		},
	)

	ctx := &ExecContext{World: w, Commands: NewCommandBuffer()}
	if err := sys.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Fatalf("system body should have executed")
	}
	got, _ := GetComponent(w, id, pos)
	if got.X != 2 {
		t.Fatalf("expected write to land, got %+v", got)
	}

	access := sys.Access(w)
	if len(access) == 0 {
		t.Fatalf("expected a non-empty access set for a query-bearing system")
	}
	foundMutable := false
	for _, a := range access {
		if a.Kind == AccessColumn && a.Mutable {
			foundMutable = true
		}
	}
	if !foundMutable {
		t.Fatalf("a Write-fetch system should declare mutable column access")
	}
}

func TestSystemWrapsErrorInScheduleError(t *testing.T) {
	boom := errTest("boom")
	sys := System0("failing", func(ctx *ExecContext) error { return boom })

	err := sys.Run(&ExecContext{World: NewWorld(), Commands: NewCommandBuffer()})
	if err == nil {
		t.Fatalf("expected an error")
	}
	se, ok := err.(ScheduleError)
	if !ok {
		t.Fatalf("expected ScheduleError, got %T", err)
	}
	if se.SystemName != "failing" {
		t.Fatalf("expected system name %q, got %q", "failing", se.SystemName)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestLocalStateSurvivesAcrossRuns(t *testing.T) {
	sys := System1(
		"counter",
		Local[int]{},
		func(ctx *ExecContext, n *int) error {
			*n++
			return nil
		},
	)
	w := NewWorld()
	for i := 0; i < 3; i++ {
		if err := sys.Run(&ExecContext{World: w, Commands: NewCommandBuffer()}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	got := *sys.states[0].(*int)
	if got != 3 {
		t.Fatalf("expected Local[int] state to persist across Run calls, got %d", got)
	}
	if access := sys.Access(w); access != nil {
		t.Fatalf("Local[T] must declare no access, got %v", access)
	}
}
