package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

func TestSubmitScoreConcurrentConflict(t *testing.T) {
	poolID := 4
	team1, team2 := 10, 20
	match := &models.Match{
		ID:           7,
		TournamentID: 1,
		PoolID:       &poolID,
		Round:        1,
		Position:     1,
		Team1ID:      &team1,
		Team2ID:      &team2,
		Status:       models.MatchStatusInProgress,
		Version:      2,
	}
	matchRepo := newFakeMatchRepo(match)
	matchRepo.updateErr = repositories.ErrMatchVersionConflict
	poolRepo := newFakePoolRepo(&models.Pool{
		ID:           poolID,
		TournamentID: 1,
		Name:         "Pool A",
		TeamIDs:      []int{team1, team2},
		Format:       models.DefaultFormat(),
	})
	svc := NewMatchService(nil, matchRepo, poolRepo, nil, nil, engine.NewHub(discardLogger()), discardLogger())

	_, err := svc.SubmitScore(context.Background(), match.ID, models.GameScore{Team1: 11, Team2: 9})
	require.ErrorIs(t, err, ErrConcurrentModification,
		"a stale write must surface as a concurrency error, not a repository one")
}

func TestMapVersionConflict(t *testing.T) {
	err := mapVersionConflict(repositories.ErrMatchVersionConflict)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	other := errors.New("disk on fire")
	assert.Equal(t, other, mapVersionConflict(other))
	assert.NoError(t, mapVersionConflict(nil))
}
