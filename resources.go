package loom

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// resourceRegistry tracks the entity a World stashes its singleton
// resources under: one distinguished, lazily-spawned entity carrying one
// component per resource type, per spec.md §4.8's "Res<T>/ResMut<T>
// (singleton components stored on a distinguished resources entity)".
type resourceRegistry struct {
	mu       sync.Mutex
	resource EntityID
	hasEnt   bool
}

func (w *World) resourceEntity() EntityID {
	w.resources.mu.Lock()
	defer w.resources.mu.Unlock()
	if w.resources.hasEnt {
		return w.resources.resource
	}
	id, err := w.Spawn()
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("loom: failed to spawn resources entity: %w", err)))
	}
	w.resources.resource = id
	w.resources.hasEnt = true
	return id
}

// AddResource installs (or overwrites) the singleton value of type T.
func AddResource[T any](w *World, c Component[T], value T) error {
	return SetComponent(w, w.resourceEntity(), c, value)
}

// Res reads the current singleton value of type T.
func Res[T any](w *World, c Component[T]) (T, error) {
	return GetComponent(w, w.resourceEntity(), c)
}

// ResMut reads the current singleton value of type T and a setter that
// writes a new value back, marking it Modified.
func ResMut[T any](w *World, c Component[T]) (T, func(T) error, error) {
	v, err := Res(w, c)
	if err != nil {
		return v, nil, err
	}
	ent := w.resourceEntity()
	return v, func(nv T) error { return SetComponent(w, ent, c, nv) }, nil
}
