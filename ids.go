package loom

import "fmt"

// EntityID is a packed 64-bit identifier carrying a kind bitset, a
// generation and an index. Two ids are equal only when all three fields
// match, which is what lets a recycled index be told apart from the
// entity that used to live there.
//
// Layout, most to least significant:
//
//	bits 60-63  kind (4 bits)
//	bits 32-59  generation (28 bits) -- or, for relation pairs, the
//	            relation component's index (28 bits)
//	bits 0-31   index (32 bits) -- or, for relation pairs, the target
//	            entity's index (32 bits)
type EntityID uint64

// Kind bits. A component id always carries KindComponent. KindStatic is
// reserved for static ids; no id loom creates carries it, and the
// resources entity is an ordinary spawned entity. Ordinary spawned
// entities carry KindPlain. Relation pairs carry KindRelation and pack a
// relation-component index and a target-entity index instead of a
// generation/index pair.
const (
	KindPlain     uint8 = 1 << 0
	KindComponent uint8 = 1 << 1
	KindStatic    uint8 = 1 << 2
	KindRelation  uint8 = 1 << 3
)

const (
	indexBits      = 32
	generationBits = 28
	kindBits       = 4

	indexMask      = uint64(1)<<indexBits - 1
	generationMask = uint64(1)<<generationBits - 1
	kindMask       = uint64(1)<<kindBits - 1

	// MaxIndex is the largest index an EntityID can carry (2^32-2); the
	// top value is reserved the same way a nil pointer is.
	MaxIndex = uint32(indexMask) - 1
)

func newEntityID(index, generation uint32, kind uint8) EntityID {
	return EntityID(uint64(index)&indexMask |
		(uint64(generation)&generationMask)<<indexBits |
		(uint64(kind)&kindMask)<<(indexBits+generationBits))
}

// Index returns the dense index component of the id.
func (e EntityID) Index() uint32 {
	return uint32(uint64(e) & indexMask)
}

// Generation returns the generation component of the id. Generation 0 is
// reserved to mean "never lived".
func (e EntityID) Generation() uint32 {
	return uint32((uint64(e) >> indexBits) & generationMask)
}

// Kind returns the kind bitset of the id.
func (e EntityID) Kind() uint8 {
	return uint8((uint64(e) >> (indexBits + generationBits)) & kindMask)
}

// IsComponent reports whether the id has the component bit set.
func (e EntityID) IsComponent() bool { return e.Kind()&KindComponent != 0 }

// IsStatic reports whether the id has the static bit set.
func (e EntityID) IsStatic() bool { return e.Kind()&KindStatic != 0 }

// IsRelation reports whether the id is a relation pair.
func (e EntityID) IsRelation() bool { return e.Kind()&KindRelation != 0 }

// IsZero reports whether the id is the reserved "never lived" value.
func (e EntityID) IsZero() bool { return e == 0 }

func (e EntityID) String() string {
	if e.IsRelation() {
		rel, target, _ := e.RelationParts()
		return fmt.Sprintf("Relation(%v, %v)", rel, target)
	}
	return fmt.Sprintf("Entity(idx=%d, gen=%d, kind=%04b)", e.Index(), e.Generation(), e.Kind())
}

// ComponentID is an EntityID with the component bit set, identifying a
// component type within a world.
type ComponentID = EntityID

func newComponentID(index uint32) ComponentID {
	return newEntityID(index, 1, KindComponent)
}

// NewRelationID packs a relation-component id and a target entity into a
// single relation-pair EntityID: the relation's index occupies the
// generation field and the target's index occupies the index field.
func NewRelationID(relation ComponentID, target EntityID) EntityID {
	return newEntityID(target.Index(), relation.Index(), KindRelation)
}

// RelationParts unpacks a relation-pair id into its relation component id
// and target entity index. ok is false if e is not a relation pair.
func (e EntityID) RelationParts() (relation ComponentID, targetIndex uint32, ok bool) {
	if !e.IsRelation() {
		return 0, 0, false
	}
	return newComponentID(e.Generation()), e.Index(), true
}
