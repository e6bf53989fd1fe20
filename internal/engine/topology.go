package engine

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/talgya/mini-diffusion/internal/agents"
)

// Edge is a directed link from one entity to a neighbor.
type Edge struct {
	From agents.EntityID `json:"from"`
	To   agents.EntityID `json:"to"`
}

// buildGraph mirrors the neighbor sets into a gonum graph for component
// analysis. Self links are kept on the entities only; gonum's simple graph
// does not allow them and they never change connectivity.
func (n *Network) buildGraph() {
	g := simple.NewDirectedGraph()
	for _, e := range n.entities {
		g.AddNode(simple.Node(e.ID))
	}
	for _, e := range n.entities {
		for _, nb := range e.Neighbors() {
			if nb == e.ID {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(e.ID), simple.Node(nb)))
		}
	}
	n.graph = g
}

// Edges lists every directed link, self links included, in id order.
func (n *Network) Edges() []Edge {
	var out []Edge
	for _, e := range n.entities {
		for _, nb := range e.Neighbors() {
			out = append(out, Edge{From: e.ID, To: nb})
		}
	}
	return out
}

// Components returns the strongly connected components, each sorted by id,
// ordered by their smallest member.
func (n *Network) Components() [][]agents.EntityID {
	sccs := topo.TarjanSCC(n.graph)
	out := make([][]agents.EntityID, 0, len(sccs))
	for _, c := range sccs {
		ids := make([]agents.EntityID, 0, len(c))
		for _, node := range c {
			ids = append(ids, agents.EntityID(node.ID()))
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []agents.EntityID) int { return int(a[0] - b[0]) })
	return out
}

// StronglyConnected reports whether every entity can reach every other.
func (n *Network) StronglyConnected() bool {
	return len(n.entities) < 2 || len(topo.TarjanSCC(n.graph)) == 1
}
