package loom

import (
	"reflect"

	"github.com/loomware/loom/stats"
)

// Stats snapshots w's current shape: entity pool occupancy, registered
// component types and a per-archetype breakdown.
func (w *World) Stats() stats.WorldStats {
	w.mu.Lock()
	archSnapshot := make([]*archetype, 0, len(w.byID))
	for id := archetypeID(0); id < w.nextArch; id++ {
		if a, ok := w.byID[id]; ok {
			archSnapshot = append(archSnapshot, a)
		}
	}
	w.mu.Unlock()

	used, recycled, capacity := w.index.stats()

	compCount := w.schema.count()
	componentTypes := make([]reflect.Type, 0, compCount)
	for _, rc := range w.schema.byIndex {
		componentTypes = append(componentTypes, rc.vt.typ)
	}

	archStats := make([]stats.ArchetypeStats, 0, len(archSnapshot))
	for _, a := range archSnapshot {
		ids := a.signature.IDs()
		compTypes := make([]reflect.Type, 0, len(ids))
		for _, cid := range ids {
			if ce, ok := a.columns[cid]; ok {
				compTypes = append(compTypes, ce.vt.typ)
			}
		}
		archStats = append(archStats, stats.ArchetypeStats{
			Size:           a.Len(),
			Components:     len(ids),
			ComponentTypes: compTypes,
		})
	}

	return stats.WorldStats{
		Entities: stats.EntityStats{
			Used:     used,
			Capacity: capacity,
			Recycled: recycled,
		},
		ComponentCount: compCount,
		ComponentTypes: componentTypes,
		Locked:         w.Locked(),
		Archetypes:     archStats,
	}
}
