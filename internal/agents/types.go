// Package agents provides the entity automaton: behavioral probabilities,
// a directed neighbor set and the per-item reception state machine.
package agents

import (
	"errors"
	"fmt"
)

// EntityID is a unique identifier for an entity, stable for its lifetime.
type EntityID int

// Group selects the range an entity's appreciation probability is drawn from.
type Group string

const (
	GroupGeneralPublic  Group = "bp" // Appreciation drawn from [bpThreshold, 1)
	GroupMinorityPublic Group = "mp" // Appreciation drawn from [0, mpThreshold)
)

var (
	ErrInvalidGroup       = errors.New("invalid group label")
	ErrInvalidProbability = errors.New("probability outside [0, 1]")
)

// ParseGroup validates a group label.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupGeneralPublic, GroupMinorityPublic:
		return g, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidGroup)
	}
}

// StatusKind tags the variant held by a Status.
type StatusKind uint8

const (
	StatusPending     StatusKind = iota // Consultable; StepsLeft counts down to 0
	StatusConsulted                     // Consulted, not yet transferred
	StatusTransferred                   // Rebroadcast to neighbors; terminal
)

// Status is an entity's local state for one held item. Transitions only
// move forward: Pending(n) → Pending(n-1) … Pending(0) → Consulted → Transferred,
// with Consulted reachable from any Pending value.
type Status struct {
	Kind      StatusKind
	StepsLeft uint // Meaningful only for StatusPending
}

// Pending returns a consultable status with the given step budget.
func Pending(stepsLeft uint) Status {
	return Status{Kind: StatusPending, StepsLeft: stepsLeft}
}

// Consulted returns the consulted status.
func Consulted() Status { return Status{Kind: StatusConsulted} }

// Transferred returns the terminal transferred status.
func Transferred() Status { return Status{Kind: StatusTransferred} }

// IsPending reports whether the item is still awaiting consultation.
func (s Status) IsPending() bool { return s.Kind == StatusPending }

// Expired reports a pending item with no steps left.
func (s Status) Expired() bool { return s.Kind == StatusPending && s.StepsLeft == 0 }

// Absorbed reports that the entity is done deciding whether to consult.
func (s Status) Absorbed() bool {
	return s.Kind == StatusConsulted || s.Kind == StatusTransferred
}

// Visible reports whether the item counts as present on the entity:
// pending with time left, or consulted and not yet passed on.
func (s Status) Visible() bool {
	return (s.Kind == StatusPending && s.StepsLeft > 0) || s.Kind == StatusConsulted
}

// Allows reports whether moving from s to next is a forward transition.
func (s Status) Allows(next Status) bool {
	switch s.Kind {
	case StatusPending:
		switch next.Kind {
		case StatusPending:
			return next.StepsLeft < s.StepsLeft
		case StatusConsulted:
			return true
		}
	case StatusConsulted:
		return next.Kind == StatusTransferred
	}
	return false
}

func (s Status) String() string {
	switch s.Kind {
	case StatusPending:
		return fmt.Sprintf("pending(%d)", s.StepsLeft)
	case StatusConsulted:
		return "consulted"
	case StatusTransferred:
		return "transferred"
	}
	return "unknown"
}
