// Package engine owns the entity arena, builds the random directed graph and
// runs the step loop that injects items, ticks entities and detects when an
// item is no longer consultable anywhere.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/entropy"
	"github.com/talgya/mini-diffusion/internal/info"
)

var (
	ErrGroupCounts     = errors.New("group counts do not match entity count")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Params describes the population of a network.
type Params struct {
	EntityCount int     `json:"entity_count"`
	GroupCounts [2]int  `json:"group_counts"` // [bp, mp]
	BPThreshold float64 `json:"bp_threshold"`
	MPThreshold float64 `json:"mp_threshold"`
}

// Network holds the entities, their directed links and the state of the
// most recent run.
type Network struct {
	entities []*agents.Entity // Index == EntityID
	graph    *simple.DirectedGraph
	rng      entropy.Source
	logger   *slog.Logger

	// Item views over the last run. alive indexes live by id.
	items      []*info.Item
	pending    []*info.Item
	dispatched []*info.Item
	live       []*info.Item
	alive      map[info.ItemID]bool
	injectedAt map[info.ItemID]int

	history []Snapshot
	steps   int

	// OnStep, when set, is called after each step's snapshot is recorded.
	OnStep func(s Snapshot)
}

// New spawns the population and draws the directed links. Entity a links to
// every other entity b with probability a.Connect, one draw per ordered pair
// in id order.
func New(p Params, rng entropy.Source, logger *slog.Logger) (*Network, error) {
	bp, mp := p.GroupCounts[0], p.GroupCounts[1]
	if p.EntityCount < 0 || bp < 0 || mp < 0 || bp+mp != p.EntityCount {
		return nil, fmt.Errorf("entities=%d groups=[%d %d]: %w", p.EntityCount, bp, mp, ErrGroupCounts)
	}

	spawner, err := agents.NewSpawner(rng, p.BPThreshold, p.MPThreshold)
	if err != nil {
		return nil, fmt.Errorf("new network: %w", err)
	}
	pop, err := spawner.SpawnPopulation(bp, mp)
	if err != nil {
		return nil, fmt.Errorf("new network: %w", err)
	}

	for _, a := range pop {
		for _, b := range pop {
			if a.ID == b.ID {
				continue
			}
			if rng.Float64() <= a.Connect {
				a.Link(b.ID)
			}
		}
	}

	n := newNetwork(pop, rng, logger)
	n.logger.Info("network built",
		"entities", len(pop),
		"bp", bp,
		"mp", mp,
		"edges", n.graph.Edges().Len(),
	)
	return n, nil
}

// NewFromEntities wraps an existing population. Entity ids must be 0..n-1
// in slice order and neighbors must refer to members of the population.
func NewFromEntities(pop []*agents.Entity, rng entropy.Source, logger *slog.Logger) (*Network, error) {
	for i, e := range pop {
		if e == nil || e.ID != agents.EntityID(i) {
			return nil, fmt.Errorf("entity at index %d: ids must be sequential: %w", i, ErrInvalidArgument)
		}
		for _, nb := range e.Neighbors() {
			if int(nb) < 0 || int(nb) >= len(pop) {
				return nil, fmt.Errorf("entity %d links to unknown %d: %w", e.ID, nb, ErrInvalidArgument)
			}
		}
	}
	return newNetwork(pop, rng, logger), nil
}

func newNetwork(pop []*agents.Entity, rng entropy.Source, logger *slog.Logger) *Network {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Network{
		entities: pop,
		rng:      rng,
		logger:   logger,
	}
	n.buildGraph()
	return n
}

// Entities returns the population in id order.
func (n *Network) Entities() []*agents.Entity {
	out := make([]*agents.Entity, len(n.entities))
	copy(out, n.entities)
	return out
}

// Entity returns the entity with the given id, or nil.
func (n *Network) Entity(id agents.EntityID) *agents.Entity {
	if !n.valid(id) {
		return nil
	}
	return n.entities[id]
}

// Size returns the number of entities.
func (n *Network) Size() int {
	return len(n.entities)
}

// Deliver hands an item to an entity. Unknown ids are ignored.
func (n *Network) Deliver(to agents.EntityID, it *info.Item) {
	if e := n.Entity(to); e != nil {
		e.Receive(it)
	}
}

func (n *Network) valid(id agents.EntityID) bool {
	return int(id) >= 0 && int(id) < len(n.entities)
}
