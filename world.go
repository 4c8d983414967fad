package loom

import (
	"sync"
	"sync/atomic"

	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// World owns every archetype, the entity index and the component schema
// for one simulation, per spec.md §2. Structural mutation (spawn, despawn,
// add/remove component) is gated by the coarse lock bits in locks -- the
// same mask.Mask256-based scheme the teacher's storage type uses for
// "don't let anyone restructure storage while a query is iterating it" --
// while reads and writes of existing component values go through the
// finer-grained per-column borrowCell instead.
type World struct {
	mu         sync.Mutex
	schema     *schema
	index      *entityIndex
	archetypes map[string]*archetype
	byID       map[archetypeID]*archetype
	nextArch   archetypeID
	graph      *archetypeGraph

	locks mask.Mask256
	queue []func(*World) error

	tick       atomic.Uint32
	generation atomic.Uint64

	resources resourceRegistry
	metadata  *SimpleCache[metadataEntry]

	logger *zap.Logger
}

// NewWorld constructs an empty World.
func NewWorld(opts ...WorldOption) *World {
	o := worldOptions{logger: Config.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	w := &World{
		schema:     newSchema(),
		index:      newEntityIndex(),
		archetypes: make(map[string]*archetype),
		byID:       make(map[archetypeID]*archetype),
		nextArch:   1,
		graph:      newArchetypeGraph(),
		logger:     o.logger,
	}
	// Start the clock at 1 so values written before any query run are
	// newer than a fresh query's last-seen tick of 0.
	w.tick.Store(1)
	empty := newArchetype(0, newSignature(), w.schema)
	w.archetypes[empty.signature.key()] = empty
	w.byID[0] = empty
	return w
}

func (w *World) currentTick() uint32 { return w.tick.Load() }

// AdvanceTick moves the world's logical clock forward by one and returns
// the new value. A mutable Query.Iter or Query.Get calls it once per run,
// and an in-place component write calls it before recording Modified;
// read-only runs observe the current tick without advancing it.
func (w *World) AdvanceTick() uint32 { return w.tick.Add(1) }

func (w *World) bumpGeneration() { w.generation.Add(1) }

// Generation reports a counter bumped on every structural change (spawn,
// despawn, add/remove component). Queries use it to know their cached
// archetype list is stale without re-scanning the whole archetype table.
func (w *World) Generation() uint64 { return w.generation.Load() }

// Locked reports whether any structural lock bit is currently held.
func (w *World) Locked() bool { return !w.locks.IsEmpty() }

// AddLock raises a structural lock bit, typically held for the duration of
// a query iteration that must not observe archetypes moving underneath it.
func (w *World) AddLock(bit uint32) { w.locks.Mark(bit) }

// RemoveLock releases a structural lock bit and, once every bit is clear,
// drains the world's own queue of deferred operations. A CommandBuffer
// keeps its own queue and is drained by CommandBuffer.Apply instead.
func (w *World) RemoveLock(bit uint32) {
	w.locks.Unmark(bit)
	if w.locks.IsEmpty() {
		w.drainQueue()
	}
}

func (w *World) enqueue(op func(*World) error) {
	w.queue = append(w.queue, op)
}

func (w *World) drainQueue() {
	pending := w.queue
	w.queue = nil
	for _, op := range pending {
		if err := op(w); err != nil {
			w.logger.Error("queued structural operation failed", zap.Error(err))
		}
	}
}

func (w *World) archetypeByID(id archetypeID) *archetype { return w.byID[id] }

// archetypeFor returns the archetype for sig, creating it if this is the
// first time sig has been seen.
func (w *World) archetypeFor(sig Signature) *archetype {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := sig.key()
	if a, ok := w.archetypes[key]; ok {
		return a
	}
	id := w.nextArch
	w.nextArch++
	a := newArchetype(id, sig, w.schema)
	w.archetypes[key] = a
	w.byID[id] = a
	w.logger.Debug("archetype created",
		zap.Uint32("archetype", uint32(id)),
		zap.Int("components", sig.Len()),
	)
	return a
}

func (w *World) archetypeForAddEdge(from *archetype, cid ComponentID) *archetype {
	if to, ok := w.graph.addEdge(from.id, cid); ok {
		return w.byID[to]
	}
	dst := w.archetypeFor(from.signature.With(cid))
	w.graph.setAddEdge(from.id, cid, dst.id)
	return dst
}

func (w *World) archetypeForRemoveEdge(from *archetype, cid ComponentID) *archetype {
	if to, ok := w.graph.removeEdge(from.id, cid); ok {
		return w.byID[to]
	}
	dst := w.archetypeFor(from.signature.Without(cid))
	w.graph.setRemoveEdge(from.id, cid, dst.id)
	return dst
}

// archetypesMatching returns every archetype whose signature satisfies
// pred, in creation order. Queries rebuild their cache from this whenever
// Generation changes.
func (w *World) archetypesMatching(pred func(Signature) bool) []*archetype {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*archetype, 0, len(w.byID))
	for id := archetypeID(0); id < w.nextArch; id++ {
		a, ok := w.byID[id]
		if ok && a.Len() > 0 && pred(a.signature) {
			out = append(out, a)
		}
	}
	return out
}

// ComponentValue pairs a Component[T] handle with a concrete value of T,
// type-erased so Spawn can accept a mixed, variadic list of them. Build one
// with loom.With.
type ComponentValue interface {
	componentID(w *World) ComponentID
	rawValue() any
}

type componentValue[T any] struct {
	c Component[T]
	v T
}

func (cv componentValue[T]) componentID(w *World) ComponentID { return cv.c.ID(w) }
func (cv componentValue[T]) rawValue() any                    { return cv.v }

// With pairs a component handle with an initial value for use in Spawn.
func With[T any](c Component[T], v T) ComponentValue { return componentValue[T]{c: c, v: v} }

// Spawn creates a new entity with the given initial component values and
// returns its id. Fails with LockedStorageError while the world is
// structurally locked (spec.md §5).
func (w *World) Spawn(values ...ComponentValue) (EntityID, error) {
	if w.Locked() {
		return 0, LockedStorageError{}
	}
	ids := make([]ComponentID, 0, len(values))
	m := make(map[ComponentID]any, len(values))
	for _, cv := range values {
		cid := cv.componentID(w)
		ids = append(ids, cid)
		m[cid] = cv.rawValue()
	}
	arch := w.archetypeFor(newSignature(ids...))
	id := w.index.allocate()
	s := arch.Push(w.currentTick(), id, m)
	w.index.set(id, arch.id, s)
	w.bumpGeneration()
	return id, nil
}

// Despawn removes an entity and all its components.
func (w *World) Despawn(id EntityID) error {
	if w.Locked() {
		return LockedStorageError{}
	}
	loc, ok := w.index.get(id)
	if !ok {
		return NoSuchEntityError{ID: id}
	}
	arch := w.byID[loc.archetype]
	_, movedEntity, moved := arch.SwapRemove(w.currentTick(), loc.slot)
	if moved {
		w.index.set(movedEntity, loc.archetype, loc.slot)
	}
	w.index.release(id)
	w.bumpGeneration()
	return nil
}

// IsAlive reports whether id currently refers to a live entity.
func (w *World) IsAlive(id EntityID) bool { return w.index.isAlive(id) }

// Has reports whether the entity carries component id.
func (w *World) Has(id EntityID, cid ComponentID) bool {
	loc, ok := w.index.get(id)
	if !ok {
		return false
	}
	return w.byID[loc.archetype].signature.Has(cid)
}

// setComponentValue writes value into id's cid column, migrating the
// entity to a new archetype first if it doesn't already carry cid.
func (w *World) setComponentValue(id EntityID, cid ComponentID, value any) error {
	loc, ok := w.index.get(id)
	if !ok {
		return NoSuchEntityError{ID: id}
	}
	arch := w.byID[loc.archetype]

	if arch.signature.Has(cid) {
		ce, _ := arch.componentColumn(cid)
		release, err := ce.cell.TryBorrowMut()
		if err != nil {
			return err
		}
		ce.col.setAny(loc.slot, value)
		release()
		arch.emitModified(w.AdvanceTick(), loc.slot, cid)
		return nil
	}

	if w.Locked() {
		return LockedStorageError{}
	}
	dst := w.archetypeForAddEdge(arch, cid)
	w.logger.Debug("archetype migration",
		zap.Stringer("entity", id),
		zap.Uint32("from", uint32(arch.id)),
		zap.Uint32("to", uint32(dst.id)),
	)
	dstSlot, _, movedEntity, moved := arch.MoveTo(w.currentTick(), loc.slot, dst, map[ComponentID]any{cid: value})
	if moved {
		w.index.set(movedEntity, loc.archetype, loc.slot)
	}
	w.index.set(id, dst.id, dstSlot)
	w.bumpGeneration()
	return nil
}

// removeComponentValue drops cid from id, migrating to the archetype that
// lacks it. A no-op, not an error, if id never carried cid -- mirroring
// the swap-remove discipline's tolerance for removing the same slice
// twice.
func (w *World) removeComponentValue(id EntityID, cid ComponentID) error {
	loc, ok := w.index.get(id)
	if !ok {
		return NoSuchEntityError{ID: id}
	}
	arch := w.byID[loc.archetype]
	if !arch.signature.Has(cid) {
		return nil
	}
	if w.Locked() {
		return LockedStorageError{}
	}
	dst := w.archetypeForRemoveEdge(arch, cid)
	w.logger.Debug("archetype migration",
		zap.Stringer("entity", id),
		zap.Uint32("from", uint32(arch.id)),
		zap.Uint32("to", uint32(dst.id)),
	)
	dstSlot, _, movedEntity, moved := arch.MoveTo(w.currentTick(), loc.slot, dst, nil)
	if moved {
		w.index.set(movedEntity, loc.archetype, loc.slot)
	}
	w.index.set(id, dst.id, dstSlot)
	w.bumpGeneration()
	return nil
}

// GetComponent returns a copy of id's current value for component c.
func GetComponent[T any](w *World, id EntityID, c Component[T]) (T, error) {
	var zero T
	loc, ok := w.index.get(id)
	if !ok {
		return zero, NoSuchEntityError{ID: id}
	}
	cid := c.ID(w)
	arch := w.byID[loc.archetype]
	ce, ok := arch.componentColumn(cid)
	if !ok {
		return zero, MissingComponentError{ID: id, ComponentName: c.typeName()}
	}
	release, err := ce.cell.TryBorrow()
	if err != nil {
		return zero, err
	}
	defer release()
	v, _ := columnValueAt[T](arch, cid, loc.slot)
	return *v, nil
}

// SetComponent writes value into id's component c, adding it (and
// migrating the entity to a new archetype) if id doesn't already carry it.
func SetComponent[T any](w *World, id EntityID, c Component[T], value T) error {
	return w.setComponentValue(id, c.ID(w), value)
}

// RemoveComponent drops component c from id.
func RemoveComponent[T any](w *World, id EntityID, c Component[T]) error {
	return w.removeComponentValue(id, c.ID(w))
}

// HasComponent reports whether id carries component c.
func HasComponent[T any](w *World, id EntityID, c Component[T]) bool {
	return w.Has(id, c.ID(w))
}
