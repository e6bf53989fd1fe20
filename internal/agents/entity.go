package agents

import (
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/talgya/mini-diffusion/internal/entropy"
	"github.com/talgya/mini-diffusion/internal/info"
)

// Probabilities are an entity's behavioral draws, each in [0, 1].
type Probabilities struct {
	Connect    float64 `json:"connect"`
	Consult    float64 `json:"consult"`
	Transfer   float64 `json:"transfer"`
	Appreciate float64 `json:"appreciate"`
}

// Validate rejects any probability outside [0, 1] (NaN included).
func (p Probabilities) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"connect", p.Connect},
		{"consult", p.Consult},
		{"transfer", p.Transfer},
		{"appreciate", p.Appreciate},
	}
	for _, f := range fields {
		if !validProbability(f.v) {
			return fmt.Errorf("%s=%v: %w", f.name, f.v, ErrInvalidProbability)
		}
	}
	return nil
}

func validProbability[T constraints.Float](p T) bool {
	return p >= 0 && p <= 1
}

// Deliverer routes an item to an entity by id. The network owns the arena
// of entities and implements it.
type Deliverer interface {
	Deliver(to EntityID, it *info.Item)
}

// Entity is a network agent. Neighbors are stored as ids, never pointers.
type Entity struct {
	ID    EntityID `json:"id"`
	Group Group    `json:"group"`
	Probabilities

	// MaxRetention is the step budget a freshly received item gets.
	MaxRetention uint `json:"max_retention"`

	neighbors []EntityID

	received  map[info.ItemID]Status
	instances []*info.Item // Receipt order, parallel to received's keys
}

// NewEntity builds an entity from explicit probabilities.
func NewEntity(id EntityID, group Group, p Probabilities) (*Entity, error) {
	if _, err := ParseGroup(string(group)); err != nil {
		return nil, fmt.Errorf("entity %d: %w", id, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("entity %d: %w", id, err)
	}
	return &Entity{
		ID:            id,
		Group:         group,
		Probabilities: p,
		received:      make(map[info.ItemID]Status),
	}, nil
}

// Link adds a directed edge to another entity. Returns false if already linked.
func (e *Entity) Link(to EntityID) bool {
	if slices.Contains(e.neighbors, to) {
		return false
	}
	e.neighbors = append(e.neighbors, to)
	return true
}

// Neighbors returns a copy of the neighbor ids in link order.
func (e *Entity) Neighbors() []EntityID {
	return slices.Clone(e.neighbors)
}

// HasNeighbor reports whether e broadcasts to id.
func (e *Entity) HasNeighbor(id EntityID) bool {
	return slices.Contains(e.neighbors, id)
}

// Reset forgets every received item. Neighbors are kept.
func (e *Entity) Reset() {
	e.received = make(map[info.ItemID]Status)
	e.instances = nil
}

// Receive stores a new item with a fresh retention budget. Delivery of an
// item already held is a no-op and returns false.
func (e *Entity) Receive(it *info.Item) bool {
	if _, ok := e.received[it.ID]; ok {
		return false
	}
	e.received[it.ID] = Pending(e.MaxRetention)
	e.instances = append(e.instances, it)
	return true
}

// Broadcast delivers the item to every neighbor.
func (e *Entity) Broadcast(it *info.Item, d Deliverer) {
	for _, n := range e.neighbors {
		d.Deliver(n, it)
	}
}

// Status returns the local state of a held item.
func (e *Entity) Status(id info.ItemID) (Status, bool) {
	s, ok := e.received[id]
	return s, ok
}

// Holds reports whether the entity has ever received the item.
func (e *Entity) Holds(id info.ItemID) bool {
	_, ok := e.received[id]
	return ok
}

// Items returns the held items in receipt order.
func (e *Entity) Items() []*info.Item {
	return slices.Clone(e.instances)
}

// VisibleItems returns ids of items pending with time left or consulted.
func (e *Entity) VisibleItems() []info.ItemID {
	var ids []info.ItemID
	for _, it := range e.instances {
		if e.received[it.ID].Visible() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (e *Entity) advance(id info.ItemID, next Status) {
	cur := e.received[id]
	if !cur.Allows(next) {
		panic(fmt.Sprintf("entity %d item %d: illegal transition %s -> %s", e.ID, id, cur, next))
	}
	e.received[id] = next
}

// Tick advances every held item by one step.
//
// First pass: pending items lose a step (floored at zero), then every item
// still pending, zero included, is tested for consult; a consult is
// immediately tested for appreciation. Second pass: every consulted item is
// tested for transfer and, on success, broadcast to all neighbors.
func (e *Entity) Tick(rng entropy.Source, d Deliverer) {
	for _, it := range e.instances {
		s := e.received[it.ID]
		if s.IsPending() && s.StepsLeft > 0 {
			s = Pending(s.StepsLeft - 1)
			e.advance(it.ID, s)
		}
		if !s.IsPending() {
			continue
		}
		if rng.Float64() < e.Consult {
			e.advance(it.ID, Consulted())
			it.Consult(int(e.ID))
			if rng.Float64() < e.Appreciate {
				// Cannot fail: the consult was recorded just above.
				_ = it.Appreciate(int(e.ID))
			}
		}
	}

	for _, it := range e.instances {
		if e.received[it.ID].Kind != StatusConsulted {
			continue
		}
		if rng.Float64() < e.Transfer && len(e.neighbors) > 0 {
			e.Broadcast(it, d)
			e.advance(it.ID, Transferred())
		}
	}
}
