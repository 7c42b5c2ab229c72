package depgraph

// TransitiveDependencies returns every cell n depends on, directly or
// indirectly, with results cached per node so overlapping subtrees are
// only walked once across repeated calls against the same graph.
func (g *Graph) TransitiveDependencies(n NodeID) []NodeID {
	if g.transCache == nil {
		g.transCache = map[NodeID][]NodeID{}
	}
	if cached, ok := g.transCache[n]; ok {
		return cached
	}

	visited := map[NodeID]bool{n: true}
	var result []NodeID
	queue := append([]NodeID{}, g.precedents[n]...)

	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		result = append(result, cur)

		if sub, ok := g.transCache[cur]; ok {
			for _, s := range sub {
				if !visited[s] {
					visited[s] = true
					result = append(result, s)
				}
			}
			continue
		}
		queue = append(queue, g.precedents[cur]...)
	}

	g.transCache[n] = result
	return result
}
