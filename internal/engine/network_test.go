package engine

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/entropy"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// population builds entities 0..len(probs)-1 and the given directed links.
func population(t *testing.T, probs []agents.Probabilities, links [][2]int) []*agents.Entity {
	t.Helper()
	pop := make([]*agents.Entity, len(probs))
	for i, p := range probs {
		e, err := agents.NewEntity(agents.EntityID(i), agents.GroupGeneralPublic, p)
		require.NoError(t, err)
		pop[i] = e
	}
	for _, l := range links {
		pop[l[0]].Link(agents.EntityID(l[1]))
	}
	return pop
}

func build(t *testing.T, rng entropy.Source, probs []agents.Probabilities, links [][2]int) *Network {
	t.Helper()
	n, err := NewFromEntities(population(t, probs, links), rng, quietLogger())
	require.NoError(t, err)
	return n
}

func mutual(size int) [][2]int {
	var links [][2]int
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i != j {
				links = append(links, [2]int{i, j})
			}
		}
	}
	return links
}

func TestNewValidatesParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want error
	}{
		{"mismatch", Params{EntityCount: 5, GroupCounts: [2]int{1, 3}, BPThreshold: 0.2, MPThreshold: 0.8}, ErrGroupCounts},
		{"negative", Params{EntityCount: 0, GroupCounts: [2]int{-1, 1}}, ErrGroupCounts},
		{"bp threshold", Params{EntityCount: 2, GroupCounts: [2]int{1, 1}, BPThreshold: 1.5, MPThreshold: 0.8}, agents.ErrInvalidProbability},
		{"mp threshold", Params{EntityCount: 2, GroupCounts: [2]int{1, 1}, BPThreshold: 0.5, MPThreshold: -1}, agents.ErrInvalidProbability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.p, entropy.NewSource(1), quietLogger())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewIsReproducibleFromSeed(t *testing.T) {
	p := Params{EntityCount: 12, GroupCounts: [2]int{4, 8}, BPThreshold: 0.3, MPThreshold: 0.6}
	a, err := New(p, entropy.NewSource(99), quietLogger())
	require.NoError(t, err)
	b, err := New(p, entropy.NewSource(99), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, a.Edges(), b.Edges())
	for _, e := range a.Entities() {
		assert.False(t, e.HasNeighbor(e.ID), "entity %d links to itself", e.ID)
		if e.ID < 4 {
			assert.Equal(t, agents.GroupGeneralPublic, e.Group)
		} else {
			assert.Equal(t, agents.GroupMinorityPublic, e.Group)
		}
	}
}

func TestNewFromEntitiesRejectsBadIDs(t *testing.T) {
	pop := population(t, []agents.Probabilities{{}, {}}, nil)
	pop[0], pop[1] = pop[1], pop[0]
	_, err := NewFromEntities(pop, entropy.NewSource(1), nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	pop = population(t, []agents.Probabilities{{}}, nil)
	pop[0].Link(5)
	_, err = NewFromEntities(pop, entropy.NewSource(1), nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDistance(t *testing.T) {
	probs := make([]agents.Probabilities, 4)

	t.Run("self link", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), probs, [][2]int{{0, 0}, {0, 1}})
		assert.Equal(t, 1, n.Distance(0, 0, 4))
	})
	t.Run("self through cycle", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), probs, [][2]int{{0, 1}, {1, 0}})
		assert.Equal(t, 2, n.Distance(0, 0, 4))
	})
	t.Run("self unreachable", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), probs, [][2]int{{0, 1}})
		assert.Equal(t, 0, n.Distance(0, 0, 4))
	})
	t.Run("chain and budget", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), probs, [][2]int{{0, 1}, {1, 2}, {2, 3}})
		assert.Equal(t, 3, n.Distance(0, 3, 4))
		assert.Equal(t, 3, n.Distance(0, 3, 2))
		assert.Equal(t, 0, n.Distance(0, 3, 1))
		assert.Equal(t, 1, n.Distance(0, 1, 0))
		assert.Equal(t, 0, n.Distance(3, 0, 4), "links are directed")
		assert.Equal(t, 0, n.Distance(0, 9, 4), "unknown id")
	})
}

func TestDiameter(t *testing.T) {
	t.Run("complete mutual graph", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), make([]agents.Probabilities, 5), mutual(5))
		assert.Equal(t, 1, n.Diameter())
		assert.True(t, n.StronglyConnected())
	})
	t.Run("ring", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), make([]agents.Probabilities, 4), [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}})
		assert.Equal(t, 3, n.Diameter())
	})
	t.Run("empty and single", func(t *testing.T) {
		empty, err := New(Params{}, entropy.NewSource(1), quietLogger())
		require.NoError(t, err)
		assert.Equal(t, 0, empty.Diameter())

		single := build(t, entropy.NewSource(1), make([]agents.Probabilities, 1), nil)
		assert.Equal(t, 0, single.Diameter())
	})
	t.Run("disconnected pair counts as zero", func(t *testing.T) {
		n := build(t, entropy.NewSource(1), make([]agents.Probabilities, 3), [][2]int{{1, 0}, {1, 2}})
		assert.Equal(t, 1, n.Diameter())
		assert.False(t, n.StronglyConnected())
	})
}

func TestComponents(t *testing.T) {
	n := build(t, entropy.NewSource(1), make([]agents.Probabilities, 4), [][2]int{{0, 1}, {1, 0}, {2, 3}, {3, 3}})
	assert.Equal(t, [][]agents.EntityID{{0, 1}, {2}, {3}}, n.Components())
	assert.Len(t, n.Edges(), 4)
	assert.Contains(t, n.Edges(), Edge{From: 3, To: 3})
}
