package loom

// EntityBuilder accumulates component values for one entity before
// spawning it, grounded on the fluent builder in original_source's
// src/entity/builder.rs: raw World.Spawn only takes a flat ComponentValue
// list, which is awkward for call sites that assemble an entity's
// components conditionally across several lines.
type EntityBuilder struct {
	values []ComponentValue
}

// NewEntityBuilder returns an empty builder.
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{}
}

// Add appends one component value, as produced by loom.With, and returns
// the builder for chaining.
func (b *EntityBuilder) Add(cv ComponentValue) *EntityBuilder {
	b.values = append(b.values, cv)
	return b
}

// Spawn creates the entity in w with every component value accumulated so
// far.
func (b *EntityBuilder) Spawn(w *World) (EntityID, error) {
	return w.Spawn(b.values...)
}

// childOfTag is the zero-sized component type backing the ChildOf
// relation: SetParent attaches the relation pair NewRelationID(ChildOf,
// parent) as a tag component on child, per ids.go's relation-pair
// encoding. Presence of the tag in child's signature, not a stored value,
// is what "has a parent" means.
type childOfTag struct{}

var childOfComponent = NewComponent[childOfTag]()

// SetParent makes parent the target of child's ChildOf relation. Any
// previous parent relation on child is dropped first, so a child has at
// most one parent at a time.
func (w *World) SetParent(child, parent EntityID) error {
	if !w.IsAlive(child) {
		return NoSuchEntityError{ID: child}
	}
	if !w.IsAlive(parent) {
		return NoSuchEntityError{ID: parent}
	}
	if old, ok := w.Parent(child); ok {
		if old == parent {
			return nil
		}
		if err := w.removeComponentValue(child, NewRelationID(childOfComponent.ID(w), old)); err != nil {
			return err
		}
	}
	pair := NewRelationID(childOfComponent.ID(w), parent)
	return w.setComponentValue(child, pair, struct{}{})
}

// Parent returns child's current ChildOf target, if it has one.
func (w *World) Parent(child EntityID) (EntityID, bool) {
	loc, ok := w.index.get(child)
	if !ok {
		return 0, false
	}
	relID := childOfComponent.ID(w)
	arch := w.byID[loc.archetype]
	for _, cid := range arch.signature.IDs() {
		if !cid.IsRelation() {
			continue
		}
		rel, targetIdx, _ := cid.RelationParts()
		if rel != relID {
			continue
		}
		return w.index.liveAt(targetIdx)
	}
	return 0, false
}

// ClearParent drops child's ChildOf relation, if any. A no-op if child has
// no parent.
func (w *World) ClearParent(child EntityID) error {
	parent, ok := w.Parent(child)
	if !ok {
		return nil
	}
	return w.removeComponentValue(child, NewRelationID(childOfComponent.ID(w), parent))
}

// Children returns every live entity whose ChildOf relation targets
// parent, scanning every archetype that carries the corresponding
// relation-pair tag. Cheap relative to a full query since the relation's
// pair id already narrows the search to exactly the archetypes carrying
// that one parent's tag.
func (w *World) Children(parent EntityID) []EntityID {
	relID := childOfComponent.ID(w)
	pair := NewRelationID(relID, parent)
	var out []EntityID
	for _, arch := range w.archetypesMatching(func(sig Signature) bool { return sig.Has(pair) }) {
		for i := 0; i < arch.Len(); i++ {
			out = append(out, arch.EntityAt(i))
		}
	}
	return out
}
