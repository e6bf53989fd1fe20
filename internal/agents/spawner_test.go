package agents

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-diffusion/internal/entropy"
)

func TestSpawnDrawOrder(t *testing.T) {
	rng := &entropy.Scripted{Floats: []float64{0.1, 0.2, 0.3, 0.5, 0.4, 0.5, 0.6, 0.5}}
	s, err := NewSpawner(rng, 0.2, 0.8)
	require.NoError(t, err)

	bp, err := s.Spawn(0, GroupGeneralPublic)
	require.NoError(t, err)
	assert.Equal(t, 0.1, bp.Connect)
	assert.Equal(t, 0.2, bp.Consult)
	assert.Equal(t, 0.3, bp.Transfer)
	assert.InDelta(t, 0.6, bp.Appreciate, 1e-12)

	mp, err := s.Spawn(1, GroupMinorityPublic)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, mp.Appreciate, 1e-12)
	assert.Equal(t, GroupMinorityPublic, mp.Group)
}

func TestSpawnRejectsUnknownGroup(t *testing.T) {
	rng := &entropy.Scripted{Floats: []float64{0.5}}
	s, err := NewSpawner(rng, 0.2, 0.8)
	require.NoError(t, err)

	_, err = s.Spawn(0, Group("vip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidGroup))
	assert.Len(t, rng.Floats, 1, "no draws before the group is validated")
}

func TestNewSpawnerRejectsThresholds(t *testing.T) {
	_, err := NewSpawner(entropy.NewSource(1), 1.5, 0.5)
	assert.True(t, errors.Is(err, ErrInvalidProbability))

	_, err = NewSpawner(entropy.NewSource(1), 0.5, -0.5)
	assert.True(t, errors.Is(err, ErrInvalidProbability))
}

func TestSpawnPopulationRanges(t *testing.T) {
	s, err := NewSpawner(entropy.NewSource(42), 0.7, 0.3)
	require.NoError(t, err)

	pop, err := s.SpawnPopulation(50, 50)
	require.NoError(t, err)
	require.Len(t, pop, 100)

	for i, e := range pop {
		assert.Equal(t, EntityID(i), e.ID)
		if i < 50 {
			assert.Equal(t, GroupGeneralPublic, e.Group)
			assert.GreaterOrEqual(t, e.Appreciate, 0.7)
			assert.Less(t, e.Appreciate, 1.0)
		} else {
			assert.Equal(t, GroupMinorityPublic, e.Group)
			assert.GreaterOrEqual(t, e.Appreciate, 0.0)
			assert.Less(t, e.Appreciate, 0.3)
		}
		assert.Empty(t, e.Neighbors())
	}
}

func TestSpawnPopulationRejectsNegativeCounts(t *testing.T) {
	s, err := NewSpawner(entropy.NewSource(1), 0.5, 0.5)
	require.NoError(t, err)
	_, err = s.SpawnPopulation(-1, 2)
	assert.Error(t, err)
}

func TestParseGroup(t *testing.T) {
	g, err := ParseGroup("mp")
	require.NoError(t, err)
	assert.Equal(t, GroupMinorityPublic, g)

	_, err = ParseGroup("")
	assert.True(t, errors.Is(err, ErrInvalidGroup))
}
