package depgraph

// TopoSort returns every registered node ordered so that each node's
// precedents precede it — the order a recalculation pass should evaluate
// cells in. Among nodes that become ready simultaneously, the one
// registered earliest (first referenced by a formula) sorts first, so
// repeated runs over an unchanged graph produce an identical order.
// Returns a *CycleError if the graph is not a DAG.
func (g *Graph) TopoSort() ([]NodeID, error) {
	indegree := make(map[NodeID]int, len(g.order))
	orderIndex := make(map[NodeID]int, len(g.order))
	for i, n := range g.order {
		indegree[n] = len(g.precedents[n])
		orderIndex[n] = i
	}

	var ready []NodeID
	for _, n := range g.order {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	result := make([]NodeID, 0, len(g.order))
	for len(ready) > 0 {
		bi := 0
		for i := 1; i < len(ready); i++ {
			if orderIndex[ready[i]] < orderIndex[ready[bi]] {
				bi = i
			}
		}
		n := ready[bi]
		ready = append(ready[:bi], ready[bi+1:]...)
		result = append(result, n)

		for _, dep := range g.dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(result) != len(g.order) {
		return nil, &CycleError{Cycles: g.DetectCycles()}
	}
	return result, nil
}
