package charms

// Node is one charm in the dependency graph.
type Node struct {
	ID            ID
	Prerequisites []ID
	// Legal is false when the charm's own essence, ability or source
	// requirement no longer holds.
	Legal bool
}

// Prune returns the set of nodes that must be removed: every forced node,
// every illegal node, every node with a prerequisite outside the graph, and
// everything downstream of those. Forced IDs not in the graph are ignored.
//
// The closure walks an explicit stack over a reverse-prerequisite index, so
// each node is pushed at most once and the walk terminates when the stack
// empties.
func Prune(nodes []Node, forced []ID) map[ID]bool {
	present := make(map[ID]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	dependents := make(map[ID][]ID)
	remove := make(map[ID]bool)
	var stack []ID
	push := func(id ID) {
		if !remove[id] {
			remove[id] = true
			stack = append(stack, id)
		}
	}

	for _, id := range forced {
		if present[id] {
			push(id)
		}
	}
	for _, n := range nodes {
		if !n.Legal {
			push(n.ID)
		}
		for _, p := range n.Prerequisites {
			if !present[p] {
				push(n.ID)
				continue
			}
			dependents[p] = append(dependents[p], n.ID)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range dependents[id] {
			push(dep)
		}
	}
	return remove
}
