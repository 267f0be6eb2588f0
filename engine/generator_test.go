package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairing(t *testing.T, matches []GeneratedMatch, round, position int) (int, int) {
	t.Helper()
	for _, m := range matches {
		if m.Round == round && m.Position == position {
			t1, t2 := 0, 0
			if m.Team1ID != nil {
				t1 = *m.Team1ID
			}
			if m.Team2ID != nil {
				t2 = *m.Team2ID
			}
			return t1, t2
		}
	}
	t.Fatalf("no match at round %d position %d", round, position)
	return 0, 0
}

func TestGenerateSingleEliminationPowerOfTwo(t *testing.T) {
	teams := []int{101, 102, 103, 104, 105, 106, 107, 108}

	matches, numRounds, err := GenerateSingleElimination(teams, false)

	require.NoError(t, err)
	assert.Equal(t, 3, numRounds)
	assert.Len(t, matches, 7)

	// Top seed plays the bottom seed; seeds 1 and 2 land in opposite halves.
	t1, t2 := pairing(t, matches, 1, 1)
	assert.Equal(t, 101, t1)
	assert.Equal(t, 108, t2)
	t1, t2 = pairing(t, matches, 1, 2)
	assert.Equal(t, 104, t1)
	assert.Equal(t, 105, t2)
	t1, t2 = pairing(t, matches, 1, 3)
	assert.Equal(t, 102, t1)
	assert.Equal(t, 107, t2)
	t1, t2 = pairing(t, matches, 1, 4)
	assert.Equal(t, 103, t1)
	assert.Equal(t, 106, t2)

	for _, m := range matches {
		assert.False(t, m.Bye)
		if m.Round > 1 {
			assert.Nil(t, m.Team1ID)
			assert.Nil(t, m.Team2ID)
		}
	}
}

func TestGenerateSingleEliminationByes(t *testing.T) {
	teams := []int{11, 22, 33, 44, 55, 66}

	matches, numRounds, err := GenerateSingleElimination(teams, false)

	require.NoError(t, err)
	assert.Equal(t, 3, numRounds)
	assert.Len(t, matches, 7)

	byeTeams := make([]int, 0, 2)
	for _, m := range matches {
		if !m.Bye {
			continue
		}
		require.Equal(t, 1, m.Round)
		if m.Team1ID != nil {
			byeTeams = append(byeTeams, *m.Team1ID)
		} else {
			byeTeams = append(byeTeams, *m.Team2ID)
		}
	}
	// Byes go to the top seeds.
	assert.ElementsMatch(t, []int{11, 22}, byeTeams)
}

func TestGenerateSingleEliminationThirdPlace(t *testing.T) {
	teams := []int{1, 2, 3, 4}

	matches, numRounds, err := GenerateSingleElimination(teams, true)

	require.NoError(t, err)
	assert.Equal(t, 2, numRounds)
	require.Len(t, matches, 4)

	var third *GeneratedMatch
	for i := range matches {
		if matches[i].ThirdPlace {
			third = &matches[i]
		}
	}
	require.NotNil(t, third)
	assert.Equal(t, numRounds, third.Round)
	assert.Equal(t, 2, third.Position)
	assert.Nil(t, third.Team1ID)
	assert.Nil(t, third.Team2ID)
}

func TestGenerateSingleEliminationTooFewTeams(t *testing.T) {
	_, _, err := GenerateSingleElimination([]int{7}, false)
	require.Error(t, err)

	_, _, err = GenerateSingleElimination(nil, false)
	require.Error(t, err)
}

func TestGenerateRoundRobin(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5}

	matches, err := GenerateRoundRobin(teams)

	require.NoError(t, err)
	assert.Len(t, matches, 10)

	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	for _, m := range matches {
		require.NotNil(t, m.Team1ID)
		require.NotNil(t, m.Team2ID)
		p := pair{*m.Team1ID, *m.Team2ID}
		if p.a > p.b {
			p.a, p.b = p.b, p.a
		}
		assert.False(t, seen[p], "pair %v scheduled twice", p)
		seen[p] = true
	}
	assert.Len(t, seen, 10)
}

func TestGenerateRoundRobinTooFewTeams(t *testing.T) {
	_, err := GenerateRoundRobin([]int{9})
	require.Error(t, err)
}

func TestSeedOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedOrder(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedOrder(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedOrder(8))
}
