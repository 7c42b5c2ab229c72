package depgraph

// DetectCycles finds every strongly-connected component of size greater
// than one, plus any single node with a self-referencing formula, using
// Tarjan's algorithm. The DFS is driven by an explicit frame stack rather
// than native recursion, since a pathological workbook's dependency chain
// can run deeper than a goroutine's default stack comfortably tolerates.
func (g *Graph) DetectCycles() [][]NodeID {
	index := 0
	indices := map[NodeID]int{}
	lowlink := map[NodeID]int{}
	onStack := map[NodeID]bool{}
	var tstack []NodeID
	var sccs [][]NodeID

	type frame struct {
		node     NodeID
		children []NodeID
		ci       int
	}

	for _, root := range g.order {
		if _, ok := indices[root]; ok {
			continue
		}

		var work []*frame
		push := func(n NodeID) {
			indices[n] = index
			lowlink[n] = index
			index++
			tstack = append(tstack, n)
			onStack[n] = true
			work = append(work, &frame{node: n, children: g.precedents[n]})
		}
		push(root)

		for len(work) > 0 {
			top := work[len(work)-1]
			if top.ci < len(top.children) {
				w := top.children[top.ci]
				top.ci++
				if _, ok := indices[w]; !ok {
					push(w)
					continue
				}
				if onStack[w] && indices[w] < lowlink[top.node] {
					lowlink[top.node] = indices[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1]
				if lowlink[top.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[top.node]
				}
			}
			if lowlink[top.node] == indices[top.node] {
				var scc []NodeID
				for {
					n := tstack[len(tstack)-1]
					tstack = tstack[:len(tstack)-1]
					onStack[n] = false
					scc = append(scc, n)
					if n == top.node {
						break
					}
				}
				if len(scc) > 1 || g.hasSelfLoop(scc[0]) {
					sccs = append(sccs, scc)
				}
			}
		}
	}
	return sccs
}

func (g *Graph) hasSelfLoop(n NodeID) bool {
	for _, p := range g.precedents[n] {
		if p == n {
			return true
		}
	}
	return false
}
