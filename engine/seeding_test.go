package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func rankedPool(teamIDs ...int) []models.PoolStanding {
	standings := make([]models.PoolStanding, len(teamIDs))
	for i, id := range teamIDs {
		standings[i] = models.PoolStanding{Rank: i + 1, TeamID: id}
	}
	return standings
}

func TestCombinePoolStandingsCrossPool(t *testing.T) {
	pools := [][]models.PoolStanding{
		rankedPool(1, 2, 3),
		rankedPool(4, 5, 6),
	}

	order, err := CombinePoolStandings(pools, SeedCrossPool)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 2, 5, 3, 6}, order)
}

func TestCombinePoolStandingsSnake(t *testing.T) {
	pools := [][]models.PoolStanding{
		rankedPool(1, 2, 3),
		rankedPool(4, 5, 6),
		rankedPool(7, 8, 9),
	}

	order, err := CombinePoolStandings(pools, SeedSnake)

	require.NoError(t, err)
	// Odd rank rows run right to left.
	assert.Equal(t, []int{1, 4, 7, 8, 5, 2, 3, 6, 9}, order)
}

func TestCombinePoolStandingsUnequalPools(t *testing.T) {
	pools := [][]models.PoolStanding{
		rankedPool(1, 2, 3),
		rankedPool(4, 5),
	}

	order, err := CombinePoolStandings(pools, SeedSnake)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5, 2, 3}, order)
}

func TestCombinePoolStandingsUnresolvedTie(t *testing.T) {
	tied := rankedPool(1, 2, 3)
	tied[2].Rank = 2

	_, err := CombinePoolStandings([][]models.PoolStanding{tied}, SeedCrossPool)

	require.ErrorIs(t, err, ErrUnresolvedTie)
}

func TestCombinePoolStandingsUnknownMethod(t *testing.T) {
	_, err := CombinePoolStandings([][]models.PoolStanding{rankedPool(1, 2)}, SeedingMethod("random"))

	require.Error(t, err)
}

func TestCombinePoolStandingsEmpty(t *testing.T) {
	order, err := CombinePoolStandings(nil, SeedSnake)

	require.NoError(t, err)
	assert.Empty(t, order)
}
