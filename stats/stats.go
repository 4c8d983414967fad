// Package stats provides read-only snapshots of a World's internal shape,
// grounded on delaneyj-arche/ecs/stats: entity pool occupancy, component
// registry size and per-archetype breakdowns, useful for a debug overlay
// or a CLI's periodic report without reaching into loom's unexported
// fields directly.
package stats

import (
	"fmt"
	"reflect"
	"strings"
)

// WorldStats summarizes one World at the moment it was collected.
type WorldStats struct {
	Entities       EntityStats
	ComponentCount int
	ComponentTypes []reflect.Type
	Locked         bool
	Archetypes     []ArchetypeStats
}

// EntityStats summarizes a World's entity index.
type EntityStats struct {
	Used     int
	Capacity int
	Recycled int
}

// ArchetypeStats summarizes one archetype.
type ArchetypeStats struct {
	Size           int
	Components     int
	ComponentTypes []reflect.Type
}

func (s *WorldStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "World -- Components: %d, Archetypes: %d, Locked: %t\n", s.ComponentCount, len(s.Archetypes), s.Locked)
	fmt.Fprintf(&b, "  Components: %s\n", joinTypeNames(s.ComponentTypes))
	fmt.Fprint(&b, s.Entities.String())
	for _, arch := range s.Archetypes {
		fmt.Fprint(&b, arch.String())
	}
	return b.String()
}

func (s EntityStats) String() string {
	return fmt.Sprintf("Entities -- Used: %d, Recycled: %d, Capacity: %d\n", s.Used, s.Recycled, s.Capacity)
}

func (s ArchetypeStats) String() string {
	return fmt.Sprintf(
		"Archetype -- Components: %d, Entities: %d\n  Components: %s\n",
		s.Components, s.Size, joinTypeNames(s.ComponentTypes),
	)
}

func joinTypeNames(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}
