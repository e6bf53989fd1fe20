// Entity spawning: draws behavioral probabilities for the population.
// The group split is the experiment's independent variable: "bp" entities
// appreciate more readily than "mp" ones.
package agents

import (
	"fmt"

	"github.com/talgya/mini-diffusion/internal/entropy"
)

// Spawner creates entities for a network.
type Spawner struct {
	rng         entropy.Source
	bpThreshold float64
	mpThreshold float64
}

// NewSpawner creates an entity spawner drawing from rng.
func NewSpawner(rng entropy.Source, bpThreshold, mpThreshold float64) (*Spawner, error) {
	if !validProbability(bpThreshold) {
		return nil, fmt.Errorf("bp threshold %v: %w", bpThreshold, ErrInvalidProbability)
	}
	if !validProbability(mpThreshold) {
		return nil, fmt.Errorf("mp threshold %v: %w", mpThreshold, ErrInvalidProbability)
	}
	return &Spawner{rng: rng, bpThreshold: bpThreshold, mpThreshold: mpThreshold}, nil
}

// Spawn creates one entity. Connect, consult and transfer are drawn
// uniformly in [0, 1) in that order, then appreciation from the group's range.
func (s *Spawner) Spawn(id EntityID, group Group) (*Entity, error) {
	if _, err := ParseGroup(string(group)); err != nil {
		return nil, fmt.Errorf("spawn entity %d: %w", id, err)
	}

	p := Probabilities{
		Connect:  s.rng.Float64(),
		Consult:  s.rng.Float64(),
		Transfer: s.rng.Float64(),
	}
	switch group {
	case GroupGeneralPublic:
		p.Appreciate = s.rng.Float64()*(1-s.bpThreshold) + s.bpThreshold
	case GroupMinorityPublic:
		p.Appreciate = s.rng.Float64() * s.mpThreshold
	}

	return NewEntity(id, group, p)
}

// SpawnPopulation creates bpCount "bp" entities followed by mpCount "mp"
// entities, with ids 0..bpCount+mpCount-1.
func (s *Spawner) SpawnPopulation(bpCount, mpCount int) ([]*Entity, error) {
	if bpCount < 0 || mpCount < 0 {
		return nil, fmt.Errorf("group counts [%d %d]: negative count", bpCount, mpCount)
	}
	pop := make([]*Entity, 0, bpCount+mpCount)
	for i := 0; i < bpCount+mpCount; i++ {
		group := GroupGeneralPublic
		if i >= bpCount {
			group = GroupMinorityPublic
		}
		e, err := s.Spawn(EntityID(i), group)
		if err != nil {
			return nil, err
		}
		pop = append(pop, e)
	}
	return pop, nil
}
