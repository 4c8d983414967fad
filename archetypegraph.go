package loom

// archetypeGraph caches the "add component X" / "remove component X" edges
// between archetypes, per spec.md §4.5, so repeated Set/Remove calls on the
// same transition don't have to recompute a destination Signature and look
// it up by key every time. Edges are populated lazily on first traversal.
type archetypeGraph struct {
	add    map[archetypeID]map[ComponentID]archetypeID
	remove map[archetypeID]map[ComponentID]archetypeID
}

func newArchetypeGraph() *archetypeGraph {
	return &archetypeGraph{
		add:    make(map[archetypeID]map[ComponentID]archetypeID),
		remove: make(map[archetypeID]map[ComponentID]archetypeID),
	}
}

func (g *archetypeGraph) addEdge(from archetypeID, id ComponentID) (archetypeID, bool) {
	edges, ok := g.add[from]
	if !ok {
		return 0, false
	}
	to, ok := edges[id]
	return to, ok
}

func (g *archetypeGraph) setAddEdge(from archetypeID, id ComponentID, to archetypeID) {
	edges, ok := g.add[from]
	if !ok {
		edges = make(map[ComponentID]archetypeID)
		g.add[from] = edges
	}
	edges[id] = to
}

func (g *archetypeGraph) removeEdge(from archetypeID, id ComponentID) (archetypeID, bool) {
	edges, ok := g.remove[from]
	if !ok {
		return 0, false
	}
	to, ok := edges[id]
	return to, ok
}

func (g *archetypeGraph) setRemoveEdge(from archetypeID, id ComponentID, to archetypeID) {
	edges, ok := g.remove[from]
	if !ok {
		edges = make(map[ComponentID]archetypeID)
		g.remove[from] = edges
	}
	edges[id] = to
}
