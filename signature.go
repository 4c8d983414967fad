package loom

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// Signature is the canonically-ordered component-id set that identifies
// an archetype, backed by github.com/TheBitDrifter/mask for O(1)
// membership tests during query matching -- the same bitset the teacher
// uses for its storage-lock bits (storage.go's mask.Mask256) and its
// query-node matching (query.go's mask.Mask), now carrying the archetype
// signature itself.
type Signature struct {
	bits mask.Mask
	ids  []ComponentID // canonically sorted, kept for stable iteration/printing
}

func newSignature(ids ...ComponentID) Signature {
	sorted := append([]ComponentID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index() < sorted[j].Index() })

	sig := Signature{}
	dedup := sorted[:0]
	var last ComponentID = EntityID(^uint64(0))
	for _, id := range sorted {
		if id == last {
			continue
		}
		dedup = append(dedup, id)
		// A relation pair's Index() is the target entity's raw spawn
		// index, not a schema-assigned type slot -- it can coincide with
		// an unrelated component's index, so relation pairs never go into
		// the mask and are matched by scanning ids instead (see Has).
		if !id.IsRelation() {
			sig.bits.Mark(id.Index())
		}
		last = id
	}
	sig.ids = dedup
	return sig
}

// With returns a new Signature with id added (a no-op if already present).
func (s Signature) With(id ComponentID) Signature {
	return newSignature(append(append([]ComponentID(nil), s.ids...), id)...)
}

// Without returns a new Signature with id removed.
func (s Signature) Without(id ComponentID) Signature {
	out := make([]ComponentID, 0, len(s.ids))
	for _, existing := range s.ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return newSignature(out...)
}

// Has reports whether id is part of the signature. Relation-pair ids are
// never in the mask (their Index() is a target entity index, not a
// schema slot, and can collide with an unrelated component's), so they're
// matched by scanning the literal ids instead.
func (s Signature) Has(id ComponentID) bool {
	if id.IsRelation() {
		for _, existing := range s.ids {
			if existing == id {
				return true
			}
		}
		return false
	}
	var m mask.Mask
	m.Mark(id.Index())
	return s.bits.ContainsAll(m)
}

// ContainsAll reports whether every component in other is present. Driven
// through Has rather than the raw masks so relation-pair members of other
// are still matched correctly.
func (s Signature) ContainsAll(other Signature) bool {
	for _, id := range other.ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one component in other is present.
func (s Signature) ContainsAny(other Signature) bool {
	for _, id := range other.ids {
		if s.Has(id) {
			return true
		}
	}
	return false
}

// ContainsNone reports whether no component in other is present.
func (s Signature) ContainsNone(other Signature) bool { return !s.ContainsAny(other) }

// IDs returns the canonically sorted component ids of the signature. The
// returned slice must not be mutated.
func (s Signature) IDs() []ComponentID { return s.ids }

// Len returns the number of distinct components in the signature.
func (s Signature) Len() int { return len(s.ids) }

// key renders a Signature into a comparable map key. Encodes the full id,
// not just Index(): a relation pair's Index() is a target entity index
// and can coincide with an unrelated component's, so an Index()-only key
// would alias two genuinely different signatures onto the same archetype.
func (s Signature) key() string {
	b := make([]byte, 0, len(s.ids)*8)
	for _, id := range s.ids {
		v := uint64(id)
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
	return string(b)
}
