// Package info provides the information item that propagates through the
// network and records who consulted and appreciated it.
package info

import (
	"errors"
	"fmt"
)

// ItemID is a sequential identifier assigned when a run creates its items.
type ItemID int

// ErrNotConsulted is returned when appreciation is recorded for an entity
// that never consulted the item.
var ErrNotConsulted = errors.New("appreciation without consult")

// Reaction values stored in ConsultedBy.
const (
	ReactionConsulted   uint8 = 0
	ReactionAppreciated uint8 = 1
)

// Item is a unit of content. ConsultedBy is keyed by entity id.
type Item struct {
	ID               ItemID        `json:"id"`
	ConsultedBy      map[int]uint8 `json:"consulted_by"`
	NetworkResidence int           `json:"network_residence"` // Steps the item stayed consultable
}

// New creates an item with an empty consult record.
func New(id ItemID) *Item {
	return &Item{
		ID:          id,
		ConsultedBy: make(map[int]uint8),
	}
}

// Consult records that an entity examined the item. An entity enters the
// record once; a second consult does not reset an appreciation.
func (it *Item) Consult(entity int) {
	if _, ok := it.ConsultedBy[entity]; ok {
		return
	}
	it.ConsultedBy[entity] = ReactionConsulted
}

// Appreciate marks a prior consult as appreciated.
func (it *Item) Appreciate(entity int) error {
	if _, ok := it.ConsultedBy[entity]; !ok {
		return fmt.Errorf("item %d, entity %d: %w", it.ID, entity, ErrNotConsulted)
	}
	it.ConsultedBy[entity] = ReactionAppreciated
	return nil
}

// Consults returns how many entities consulted the item.
func (it *Item) Consults() int {
	return len(it.ConsultedBy)
}

// Appreciations returns how many entities appreciated the item.
func (it *Item) Appreciations() int {
	n := 0
	for _, r := range it.ConsultedBy {
		if r == ReactionAppreciated {
			n++
		}
	}
	return n
}
