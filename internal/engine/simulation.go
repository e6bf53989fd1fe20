package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/info"
)

// notInjected marks an item that never left the pending list.
const notInjected = -1

// Run executes one simulation. Each step injects one pending item (if any)
// into a random entity and its neighbors, ticks every entity in id order,
// retires items that are no longer consultable and records a visibility
// snapshot. The loop stops when no item is live or after maxSteps steps.
//
// Entity state and item views are reset first, so successive runs on the
// same network are independent.
func (n *Network) Run(maxSteps, itemCount, itemRetention int) error {
	if maxSteps < 0 || itemCount < 0 || itemRetention < 0 {
		return fmt.Errorf("run steps=%d items=%d retention=%d: %w",
			maxSteps, itemCount, itemRetention, ErrInvalidArgument)
	}

	n.resetRun(itemCount, itemRetention)

	k := 0
	for len(n.live) > 0 && k < maxSteps && len(n.entities) > 0 {
		if len(n.pending) > 0 {
			n.inject(k)
		}

		for _, e := range n.entities {
			e.Tick(n.rng, n)
		}

		n.retireDead(k)
		snap := n.snapshot(k)
		n.history = append(n.history, snap)
		if n.OnStep != nil {
			n.OnStep(snap)
		}
		k++
	}
	n.steps = k

	for _, it := range n.live {
		if at := n.injectedAt[it.ID]; at != notInjected {
			it.NetworkResidence = maxSteps - at
		}
	}

	n.logger.Info("simulation finished",
		"steps", n.steps,
		"items", len(n.items),
		"dispatched", len(n.dispatched),
		"still_live", len(n.live),
	)
	return nil
}

func (n *Network) resetRun(itemCount, itemRetention int) {
	n.items = make([]*info.Item, 0, itemCount)
	n.pending = make([]*info.Item, 0, itemCount)
	n.dispatched = nil
	n.live = make([]*info.Item, 0, itemCount)
	n.alive = make(map[info.ItemID]bool, itemCount)
	n.injectedAt = make(map[info.ItemID]int, itemCount)
	n.history = nil
	n.steps = 0

	for i := 0; i < itemCount; i++ {
		it := info.New(info.ItemID(i))
		n.items = append(n.items, it)
		n.pending = append(n.pending, it)
		n.live = append(n.live, it)
		n.alive[it.ID] = true
		n.injectedAt[it.ID] = notInjected
	}

	for _, e := range n.entities {
		e.Reset()
		e.MaxRetention = uint(itemRetention)
	}
}

// inject picks an entity and a pending item with independent draws.
func (n *Network) inject(step int) {
	ei := n.rng.Intn(len(n.entities))
	ii := n.rng.Intn(len(n.pending))
	it := n.pending[ii]
	e := n.entities[ei]

	n.injectedAt[it.ID] = step
	e.Receive(it)
	e.Broadcast(it, n)

	n.dispatched = append(n.dispatched, it)
	n.pending = slices.Delete(n.pending, ii, ii+1)

	n.logger.Debug("item injected", "step", step, "item", it.ID, "entity", e.ID)
}

// retireDead checks every dispatched live item. An item dies when every
// entity has received it and none still has it pending (fully absorbed), or
// when every entity that received it holds it pending with no steps left
// (fully expired).
func (n *Network) retireDead(step int) {
	for _, it := range n.dispatched {
		if !n.alive[it.ID] {
			continue
		}

		statuses := n.statusesOf(it.ID)
		cause := ""
		switch {
		case len(statuses) == len(n.entities) && allStatus(statuses, agents.Status.Absorbed):
			cause = "absorbed"
		case len(statuses) > 0 && allStatus(statuses, agents.Status.Expired):
			cause = "expired"
		default:
			continue
		}

		it.NetworkResidence = step - n.injectedAt[it.ID]
		n.alive[it.ID] = false
		n.live = slices.DeleteFunc(n.live, func(x *info.Item) bool { return x.ID == it.ID })
		n.logger.Debug("item died",
			"step", step,
			"item", it.ID,
			"cause", cause,
			"residence", it.NetworkResidence,
			"reached", len(statuses),
		)
	}
}

func (n *Network) statusesOf(id info.ItemID) []agents.Status {
	var out []agents.Status
	for _, e := range n.entities {
		if s, ok := e.Status(id); ok {
			out = append(out, s)
		}
	}
	return out
}

func allStatus(statuses []agents.Status, pred func(agents.Status) bool) bool {
	for _, s := range statuses {
		if !pred(s) {
			return false
		}
	}
	return true
}

// Steps returns how many steps the last run executed.
func (n *Network) Steps() int { return n.steps }

// Items returns every item of the last run in creation order.
func (n *Network) Items() []*info.Item { return slices.Clone(n.items) }

// PendingItems returns items not yet injected.
func (n *Network) PendingItems() []*info.Item { return slices.Clone(n.pending) }

// DispatchedItems returns injected items in injection order.
func (n *Network) DispatchedItems() []*info.Item { return slices.Clone(n.dispatched) }

// LiveItems returns items still consultable somewhere (or not yet injected).
func (n *Network) LiveItems() []*info.Item { return slices.Clone(n.live) }

// InjectedAt returns the step an item was injected, or false if it never was.
func (n *Network) InjectedAt(id info.ItemID) (int, bool) {
	at, ok := n.injectedAt[id]
	if !ok || at == notInjected {
		return 0, false
	}
	return at, true
}
