package engine

import (
	"slices"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/info"
)

// Snapshot lists, for one step, the items visible on each entity: pending
// with steps left, or consulted and not yet transferred. Every entity has
// an entry, possibly empty.
type Snapshot struct {
	Step    int                                `json:"step"`
	Visible map[agents.EntityID][]info.ItemID `json:"visible"`
}

// ItemSummary is the per-item outcome of a run.
type ItemSummary struct {
	ID            info.ItemID `json:"id"`
	InjectedAt    int         `json:"injected_at"` // -1 if never injected
	Residence     int         `json:"residence"`
	Reached       int         `json:"reached"` // Entities that received the item
	Consults      int         `json:"consults"`
	Appreciations int         `json:"appreciations"`
	Live          bool        `json:"live"` // Still consultable when the run ended
}

func (n *Network) snapshot(step int) Snapshot {
	s := Snapshot{
		Step:    step,
		Visible: make(map[agents.EntityID][]info.ItemID, len(n.entities)),
	}
	for _, e := range n.entities {
		s.Visible[e.ID] = e.VisibleItems()
	}
	return s
}

// History returns the step-indexed visibility snapshots of the last run.
func (n *Network) History() []Snapshot {
	return slices.Clone(n.history)
}

// Summaries returns one outcome row per item of the last run.
func (n *Network) Summaries() []ItemSummary {
	out := make([]ItemSummary, 0, len(n.items))
	for _, it := range n.items {
		reached := 0
		for _, e := range n.entities {
			if e.Holds(it.ID) {
				reached++
			}
		}
		out = append(out, ItemSummary{
			ID:            it.ID,
			InjectedAt:    n.injectedAt[it.ID],
			Residence:     it.NetworkResidence,
			Reached:       reached,
			Consults:      it.Consults(),
			Appreciations: it.Appreciations(),
			Live:          n.alive[it.ID],
		})
	}
	return out
}
