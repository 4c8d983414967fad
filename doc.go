/*
Package loom provides an archetypal Entity-Component-System runtime.

loom keeps entities with the same component set packed together in one
archetype's columns, so a query over "Position and Velocity" walks dense
slices instead of chasing pointers. Structural changes (spawning,
despawning, adding or removing a component) move an entity between
archetypes; per-component change lists record when a value was inserted,
modified or removed, so a system can ask for only what changed since its
last run.

Core Concepts:

  - EntityID: a packed, generation-checked identifier for a live entity.
  - Component[T]: a typed handle for a component type, registered lazily
    into whichever World first uses it.
  - Archetype: the columnar store for every entity sharing one exact set
    of components.
  - Query: a Fetch (what to read) paired with a Filter (which slots
    qualify), caching the archetypes it matches until the world's
    structural generation counter advances.
  - System + Schedule: systems declare their parameters' access up front;
    a Schedule batches non-conflicting systems and runs each batch
    sequentially or concurrently.

Basic Usage:

	w := loom.NewWorld()
	position := loom.NewComponent[Position]()
	velocity := loom.NewComponent[Velocity]()

	id, _ := w.Spawn(loom.With(position, Position{}), loom.With(velocity, Velocity{X: 1}))

	q := loom.Query2(loom.Write[Position]{C: position}, loom.Read[Velocity]{C: velocity})
	for pair := range q.Iter(w) {
		pair.A.X += pair.B.X
	}

loom is a standalone ECS core; integrating it with a render loop,
networking or persistence is left to the caller.
*/
package loom
