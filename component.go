package loom

import (
	"fmt"
	"reflect"
	"sync"
)

func componentTypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// untypedComponent is the type-erased handle a query, archetype or world
// uses to talk about "some component type" without a generic parameter.
// Component[T] below is the public, type-safe facade over it.
type untypedComponent interface {
	// resolve registers (if necessary) and returns this component's id
	// within w, along with its vtable.
	resolve(w *World) (ComponentID, *vtable)
	typeName() string
}

// Component is a typed handle to a component type, analogous to the
// teacher's AccessibleComponent: it carries no state of its own beyond a
// prototype vtable, and is registered lazily into whichever World first
// uses it (spec.md §9 "Global state ... no process-global state").
type Component[T any] struct {
	proto *vtable
}

// NewComponent creates a handle for component type T. Safe to call once
// and share across worlds and goroutines; registration into any
// particular World happens lazily and is itself race-free.
func NewComponent[T any]() Component[T] {
	return Component[T]{proto: newVTable[T](0)}
}

func (c Component[T]) typeName() string { return c.proto.name }

// Name returns the component's human-readable type name, for use in
// filter and access descriptions.
func (c Component[T]) Name() string { return c.proto.name }

// ComponentRef is the type-erased handle Filters and Access descriptions
// use to talk about "some component" without needing the query's generic
// parameter. Component[T] satisfies it directly.
type ComponentRef interface {
	ID(w *World) ComponentID
	Name() string
}

func (c Component[T]) resolve(w *World) (ComponentID, *vtable) {
	return w.schema.register(c.proto)
}

// ID returns this component's id within w, registering it if necessary.
func (c Component[T]) ID(w *World) ComponentID {
	id, _ := c.resolve(w)
	return id
}

// schema assigns a stable, world-scoped ComponentID and signature bit to
// each distinct component type on first use, guarded by a mutex -- the
// direct, race-free equivalent of the atomic compare-and-swap loop
// spec.md §9 describes for a single monotonic counter.
type schema struct {
	mu      sync.Mutex
	byType  map[reflect.Type]*registeredComponent
	byIndex []*registeredComponent
}

type registeredComponent struct {
	id ComponentID
	vt *vtable
}

func newSchema() *schema {
	return &schema{byType: make(map[reflect.Type]*registeredComponent)}
}

func (s *schema) register(proto *vtable) (ComponentID, *vtable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rc, ok := s.byType[proto.typ]; ok {
		return rc.id, rc.vt
	}
	idx := uint32(len(s.byIndex))
	if idx > MaxIndex {
		panic(fmt.Sprintf("loom: exhausted component id space at %s", proto.name))
	}
	id := newComponentID(idx)
	vt := *proto
	vt.id = id
	rc := &registeredComponent{id: id, vt: &vt}
	s.byType[proto.typ] = rc
	s.byIndex = append(s.byIndex, rc)
	return rc.id, rc.vt
}

func (s *schema) lookup(id ComponentID) (*registeredComponent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := int(id.Index())
	if idx < 0 || idx >= len(s.byIndex) {
		return nil, false
	}
	return s.byIndex[idx], true
}

func (s *schema) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byIndex)
}

// relationVTable synthesizes a zero-sized tag vtable for a relation-pair
// id (ids.go's NewRelationID): the pair itself never goes through
// schema.register since it isn't backed by a distinct Go type, but an
// archetype still needs a column and a name for it.
func relationVTable(pairID EntityID) *vtable {
	rel, target, _ := pairID.RelationParts()
	return &vtable{
		id:   pairID,
		name: fmt.Sprintf("relation(%v, target=%d)", rel, target),
		typ:  reflect.TypeOf(struct{}{}),
		newColumn: func(capacity int) column {
			return newTypedColumn[struct{}](capacity)
		},
	}
}

// resolveVTable looks up cid's vtable the normal way for a registered
// component, falling back to a synthesized tag vtable for relation-pair
// ids, which never go through schema.register.
func resolveVTable(sch *schema, cid ComponentID) (*vtable, bool) {
	if cid.IsRelation() {
		return relationVTable(cid), true
	}
	rc, ok := sch.lookup(cid)
	if !ok {
		return nil, false
	}
	return rc.vt, true
}
