package loom

// AccessKind classifies one entry in a declared access set, per spec.md
// §4.8.
type AccessKind uint8

const (
	AccessWorld AccessKind = iota
	AccessCommandBuffer
	AccessColumn
	AccessChangeEvent
)

func (k AccessKind) String() string {
	switch k {
	case AccessWorld:
		return "world"
	case AccessCommandBuffer:
		return "command-buffer"
	case AccessColumn:
		return "column"
	case AccessChangeEvent:
		return "change-event"
	default:
		return "unknown"
	}
}

// Access records one thing a Fetch, Filter or SystemParam touches, and
// whether it touches it mutably. Two access sets conflict per spec.md
// §4.8's rule, computed by ConflictsAny below.
type Access struct {
	Kind      AccessKind
	Archetype archetypeID
	Component ComponentID
	Mutable   bool
}

// sameTarget reports whether a and b name the same resource, ignoring
// mutability.
func (a Access) sameTarget(b Access) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case AccessColumn, AccessChangeEvent:
		return a.Archetype == b.Archetype && a.Component == b.Component
	default:
		return true
	}
}

// conflicts reports whether a and b cannot be held concurrently: the same
// (kind, archetype, component) target with at least one mutable access, or
// either being a World-exclusive access.
func (a Access) conflicts(b Access) bool {
	if a.Kind == AccessWorld && a.Mutable {
		return true
	}
	if b.Kind == AccessWorld && b.Mutable {
		return true
	}
	if !a.sameTarget(b) {
		return false
	}
	return a.Mutable || b.Mutable
}

// ConflictsAny reports whether any access in a conflicts with any access
// in b. Used by the scheduler to decide batch membership.
func ConflictsAny(a, b []Access) bool {
	for _, x := range a {
		for _, y := range b {
			if x.conflicts(y) {
				return true
			}
		}
	}
	return false
}
