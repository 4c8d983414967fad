package loom

// InitContext is handed to every SystemParam's InitState exactly once,
// when a System is first staged. It carries no payload yet -- a hook for
// user-supplied typed inputs, per spec.md §4.8's "init_ctx".
type InitContext struct{}

// ExecContext is handed to every SystemParam's Acquire on each run.
type ExecContext struct {
	World    *World
	Commands *CommandBuffer
}

// SystemParam is one parameter a System declares, per spec.md §4.8: a
// one-shot setup step, a per-run acquire, and a declared access set used
// by the scheduler's conflict analysis.
type SystemParam[Value any] interface {
	InitState(ctx *InitContext) any
	Acquire(state any, ctx *ExecContext) Value
	Access(state any, w *World) []Access
	Describe() string
}

type erasedParam interface {
	initState(ctx *InitContext) any
	access(state any, w *World) []Access
	describe() string
}

type paramAdapter[V any] struct{ p SystemParam[V] }

func (a paramAdapter[V]) initState(ctx *InitContext) any      { return a.p.InitState(ctx) }
func (a paramAdapter[V]) access(state any, w *World) []Access { return a.p.Access(state, w) }
func (a paramAdapter[V]) describe() string                    { return a.p.Describe() }

// System is a user function plus its declared parameters, runnable by a
// Schedule. Build one with System0/System1/System2/System3.
type System struct {
	name   string
	params []erasedParam
	states []any
	staged bool
	runner func(ctx *ExecContext, states []any) error
}

func (s *System) ensureStaged(ictx *InitContext) {
	if s.staged {
		return
	}
	for i, p := range s.params {
		s.states[i] = p.initState(ictx)
	}
	s.staged = true
}

// Name returns the system's registered name, used in ScheduleError.
func (s *System) Name() string { return s.name }

// Access returns this system's current declared access set, evaluated
// against w's live archetypes.
func (s *System) Access(w *World) []Access {
	var out []Access
	for i, p := range s.params {
		out = append(out, p.access(s.states[i], w)...)
	}
	return out
}

// Run executes the system once, staging it first if a Schedule hasn't
// already done so. Errors are wrapped in ScheduleError with the system's
// name attached, per spec.md §7.
func (s *System) Run(ctx *ExecContext) error {
	s.ensureStaged(&InitContext{})
	if err := s.runner(ctx, s.states); err != nil {
		return ScheduleError{SystemName: s.name, Err: err}
	}
	return nil
}

// System0 builds a system with no declared parameters.
func System0(name string, fn func(ctx *ExecContext) error) *System {
	return &System{
		name:   name,
		runner: func(ctx *ExecContext, states []any) error { return fn(ctx) },
	}
}

// System1 builds a system with one declared parameter.
func System1[A any](name string, pa SystemParam[A], fn func(ctx *ExecContext, a A) error) *System {
	return &System{
		name:   name,
		params: []erasedParam{paramAdapter[A]{pa}},
		states: make([]any, 1),
		runner: func(ctx *ExecContext, states []any) error {
			return fn(ctx, pa.Acquire(states[0], ctx))
		},
	}
}

// System2 builds a system with two declared parameters.
func System2[A, B any](name string, pa SystemParam[A], pb SystemParam[B], fn func(ctx *ExecContext, a A, b B) error) *System {
	return &System{
		name:   name,
		params: []erasedParam{paramAdapter[A]{pa}, paramAdapter[B]{pb}},
		states: make([]any, 2),
		runner: func(ctx *ExecContext, states []any) error {
			return fn(ctx, pa.Acquire(states[0], ctx), pb.Acquire(states[1], ctx))
		},
	}
}

// System3 builds a system with three declared parameters.
func System3[A, B, C any](name string, pa SystemParam[A], pb SystemParam[B], pc SystemParam[C], fn func(ctx *ExecContext, a A, b B, c C) error) *System {
	return &System{
		name:   name,
		params: []erasedParam{paramAdapter[A]{pa}, paramAdapter[B]{pb}, paramAdapter[C]{pc}},
		states: make([]any, 3),
		runner: func(ctx *ExecContext, states []any) error {
			return fn(ctx, pa.Acquire(states[0], ctx), pb.Acquire(states[1], ctx), pc.Acquire(states[2], ctx))
		},
	}
}

// WorldShared grants read access to the world.
type WorldShared struct{}

func (WorldShared) InitState(*InitContext) any       { return nil }
func (WorldShared) Acquire(state any, ctx *ExecContext) *World { return ctx.World }
func (WorldShared) Access(any, *World) []Access      { return []Access{{Kind: AccessWorld, Mutable: false}} }
func (WorldShared) Describe() string                 { return "world(shared)" }

// WorldExclusive grants exclusive access to the world; no other system
// can share a batch with it.
type WorldExclusive struct{}

func (WorldExclusive) InitState(*InitContext) any        { return nil }
func (WorldExclusive) Acquire(state any, ctx *ExecContext) *World { return ctx.World }
func (WorldExclusive) Access(any, *World) []Access       { return []Access{{Kind: AccessWorld, Mutable: true}} }
func (WorldExclusive) Describe() string                  { return "world(exclusive)" }

// CommandBufferShared grants read access to the batch's command buffer.
type CommandBufferShared struct{}

func (CommandBufferShared) InitState(*InitContext) any { return nil }
func (CommandBufferShared) Acquire(state any, ctx *ExecContext) *CommandBuffer { return ctx.Commands }
func (CommandBufferShared) Access(any, *World) []Access { return []Access{{Kind: AccessCommandBuffer, Mutable: false}} }
func (CommandBufferShared) Describe() string            { return "commands(shared)" }

// CommandBufferExclusive grants write access to the batch's command
// buffer; at most one system per batch may hold it.
type CommandBufferExclusive struct{}

func (CommandBufferExclusive) InitState(*InitContext) any { return nil }
func (CommandBufferExclusive) Acquire(state any, ctx *ExecContext) *CommandBuffer { return ctx.Commands }
func (CommandBufferExclusive) Access(any, *World) []Access { return []Access{{Kind: AccessCommandBuffer, Mutable: true}} }
func (CommandBufferExclusive) Describe() string            { return "commands(exclusive)" }

// QueryParam lets a System declare a Query[Item] as a parameter; its
// access set is the union of the query's currently matching archetypes'
// fetch and filter accesses.
type QueryParam[Item any] struct{ Q *Query[Item] }

// UseQuery wraps an existing Query as a SystemParam.
func UseQuery[Item any](q *Query[Item]) QueryParam[Item] { return QueryParam[Item]{Q: q} }

func (p QueryParam[Item]) InitState(*InitContext) any { return nil }
func (p QueryParam[Item]) Acquire(any, *ExecContext) *Query[Item] { return p.Q }
func (p QueryParam[Item]) Access(state any, w *World) []Access {
	p.Q.refresh(w)
	var out []Access
	for _, arch := range p.Q.archetypes {
		out = append(out, p.Q.fetch.Access(w, arch)...)
		out = append(out, p.Q.filter.Access(w, arch)...)
	}
	return out
}
func (p QueryParam[Item]) Describe() string { return "query(" + p.Q.fetch.Describe() + ")" }

// ResParam declares read access to the singleton resource of type T.
type ResParam[T any] struct{ C Component[T] }

// UseRes wraps a resource component as a read-only SystemParam.
func UseRes[T any](c Component[T]) ResParam[T] { return ResParam[T]{C: c} }

func (p ResParam[T]) InitState(*InitContext) any { return nil }
func (p ResParam[T]) Acquire(state any, ctx *ExecContext) T {
	v, _ := Res(ctx.World, p.C)
	return v
}
func (p ResParam[T]) Access(state any, w *World) []Access {
	loc, ok := w.index.get(w.resourceEntity())
	if !ok {
		return nil
	}
	return []Access{{Kind: AccessColumn, Archetype: loc.archetype, Component: p.C.ID(w), Mutable: false}}
}
func (p ResParam[T]) Describe() string { return "res(" + p.C.Name() + ")" }

// ResMutHandle is what a ResMutParam acquires: the current value plus a
// setter that writes a new one back.
type ResMutHandle[T any] struct {
	Value T
	Set   func(T) error
}

// ResMutParam declares write access to the singleton resource of type T.
type ResMutParam[T any] struct{ C Component[T] }

// UseResMut wraps a resource component as a read-write SystemParam.
func UseResMut[T any](c Component[T]) ResMutParam[T] { return ResMutParam[T]{C: c} }

func (p ResMutParam[T]) InitState(*InitContext) any { return nil }
func (p ResMutParam[T]) Acquire(state any, ctx *ExecContext) ResMutHandle[T] {
	v, setter, _ := ResMut(ctx.World, p.C)
	return ResMutHandle[T]{Value: v, Set: setter}
}
func (p ResMutParam[T]) Access(state any, w *World) []Access {
	loc, ok := w.index.get(w.resourceEntity())
	if !ok {
		return nil
	}
	return []Access{{Kind: AccessColumn, Archetype: loc.archetype, Component: p.C.ID(w), Mutable: true}}
}
func (p ResMutParam[T]) Describe() string { return "res_mut(" + p.C.Name() + ")" }

// Local holds per-system state that persists across runs but is invisible
// to the scheduler's conflict analysis, per spec.md §4.8.
type Local[T any] struct{}

func (Local[T]) InitState(*InitContext) any { var v T; return &v }
func (Local[T]) Acquire(state any, ctx *ExecContext) *T { return state.(*T) }
func (Local[T]) Access(any, *World) []Access            { return nil }
func (Local[T]) Describe() string                       { return "local" }
