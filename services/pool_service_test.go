package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func TestBuildPoolMatches(t *testing.T) {
	pool := &models.Pool{
		ID:           7,
		TournamentID: 1,
		TeamIDs:      []int{11, 22, 33, 44},
	}
	scheduledAt := time.Date(2026, time.September, 5, 9, 0, 0, 0, time.UTC)

	matches, err := buildPoolMatches(pool, scheduledAt)

	require.NoError(t, err)
	// Full round robin: every pair exactly once.
	require.Len(t, matches, 6)
	for _, m := range matches {
		require.NotNil(t, m.PoolID)
		assert.Equal(t, 7, *m.PoolID)
		assert.Nil(t, m.BracketID)
		assert.Equal(t, models.MatchStatusUpcoming, m.Status)
		assert.Equal(t, scheduledAt, m.ScheduledAt)
		require.NotNil(t, m.Team1ID)
		require.NotNil(t, m.Team2ID)
	}
}

func TestBuildPoolMatchesTooFewTeams(t *testing.T) {
	pool := &models.Pool{ID: 7, TeamIDs: []int{11}}

	_, err := buildPoolMatches(pool, time.Now())

	require.Error(t, err)
}

func TestCreatePoolValidation(t *testing.T) {
	teamRepo := newFakeTeamRepo(
		&models.Team{ID: 11, TournamentID: 1, Seed: 1},
		&models.Team{ID: 22, TournamentID: 1, Seed: 2},
	)
	svc := NewPoolService(nil, nil, teamRepo, nil, nil, discardLogger())

	t.Run("needs at least two teams", func(t *testing.T) {
		_, err := svc.CreatePool(context.Background(), CreatePoolParams{
			TournamentID: 1,
			TeamIDs:      []int{11},
		})
		require.ErrorIs(t, err, ErrNotEnoughTeams)
	})

	t.Run("every team must exist", func(t *testing.T) {
		_, err := svc.CreatePool(context.Background(), CreatePoolParams{
			TournamentID: 1,
			TeamIDs:      []int{11, 22, 99},
		})
		require.ErrorIs(t, err, ErrTeamNotFound)
	})
}
