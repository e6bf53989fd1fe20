package engine

import (
	"github.com/talgya/mini-diffusion/internal/agents"
)

// Distance returns the number of hops from a to b found by breadth-first
// expansion along directed links, or 0 if b is not reached within budget
// expansions. The search starts at a's neighbors (depth 1), so a is only
// found at depth 1 when it links to itself.
func (n *Network) Distance(a, b agents.EntityID, budget int) int {
	if !n.valid(a) || !n.valid(b) {
		return 0
	}

	frontier := n.entities[a].Neighbors()
	seen := make(map[agents.EntityID]bool, len(n.entities))
	for _, id := range frontier {
		seen[id] = true
	}

	depth := 1
	for expansions := 0; ; expansions++ {
		if seen[b] {
			return depth
		}
		if len(frontier) == 0 || expansions >= budget {
			return 0
		}

		var next []agents.EntityID
		for _, id := range frontier {
			for _, nb := range n.entities[id].Neighbors() {
				if !seen[nb] {
					seen[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
		depth++
	}
}

// Diameter returns the largest Distance(i, j, size) over pairs i < j in id
// order. Unreachable pairs contribute 0, so a disconnected graph can report
// a diameter smaller than its longest finite path in the other direction.
func (n *Network) Diameter() int {
	size := len(n.entities)
	d := 0
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if dist := n.Distance(agents.EntityID(i), agents.EntityID(j), size); dist > d {
				d = dist
			}
		}
	}
	if size > 1 && !n.StronglyConnected() {
		n.logger.Warn("graph is not strongly connected, diameter ignores unreachable pairs",
			"diameter", d,
			"components", len(n.Components()),
		)
	}
	return d
}
