package loom

import "sync"

// entityOp is one deferred mutation recorded by a CommandBuffer.
type entityOp func(w *World) error

// CommandBuffer defers spawn/despawn/set/remove calls so systems can
// request structural changes while the world is locked for iteration,
// per spec.md §6: "Command buffer: offers spawn, despawn, set, remove,
// apply(world); the core invokes apply between batches." Safe for
// concurrent use by systems running in the same scheduler batch.
type CommandBuffer struct {
	mu  sync.Mutex
	ops []entityOp
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer { return &CommandBuffer{} }

func (b *CommandBuffer) push(op entityOp) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, op)
}

// Spawn queues an entity spawn. It returns no id, since the entity does
// not exist until Apply runs. Callers needing the id immediately should
// call World.Spawn directly outside a locked region instead.
func (b *CommandBuffer) Spawn(values ...ComponentValue) {
	b.push(func(w *World) error {
		_, err := w.Spawn(values...)
		return err
	})
}

// Despawn queues a despawn of id.
func (b *CommandBuffer) Despawn(id EntityID) {
	b.push(func(w *World) error { return w.Despawn(id) })
}

// SetQueued queues writing value into id's component c.
func SetQueued[T any](b *CommandBuffer, id EntityID, c Component[T], value T) {
	b.push(func(w *World) error { return SetComponent(w, id, c, value) })
}

// RemoveQueued queues removing component c from id.
func RemoveQueued[T any](b *CommandBuffer, id EntityID, c Component[T]) {
	b.push(func(w *World) error { return RemoveComponent(w, id, c) })
}

// Len reports how many operations are currently queued.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Apply runs every queued operation against w, in submission order, then
// clears the buffer. The first error stops the drain and is returned with
// the remaining operations discarded, matching the scheduler's "one
// system's error aborts the schedule" contract.
func (b *CommandBuffer) Apply(w *World) error {
	b.mu.Lock()
	pending := b.ops
	b.ops = nil
	b.mu.Unlock()

	for _, op := range pending {
		if err := op(w); err != nil {
			return err
		}
	}
	return nil
}
