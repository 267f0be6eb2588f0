package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterTeam(t *testing.T) {
	teamRepo := newFakeTeamRepo()
	svc := NewTeamService(nil, teamRepo, newFakeBracketRepo(), discardLogger())

	t.Run("creates the team", func(t *testing.T) {
		team, err := svc.RegisterTeam(context.Background(), RegisterTeamParams{
			TournamentID: 1,
			Name:         "Dink Masters",
			Seed:         3,
			Players:      []models.Player{{DisplayName: "Sam"}, {DisplayName: "Alex"}},
		})

		require.NoError(t, err)
		assert.NotZero(t, team.ID)
		assert.Equal(t, 3, team.Seed)
	})

	t.Run("rejects an empty roster", func(t *testing.T) {
		_, err := svc.RegisterTeam(context.Background(), RegisterTeamParams{TournamentID: 1, Seed: 1})
		require.Error(t, err)
	})

	t.Run("rejects a non-positive seed", func(t *testing.T) {
		_, err := svc.RegisterTeam(context.Background(), RegisterTeamParams{
			TournamentID: 1,
			Players:      []models.Player{{DisplayName: "Sam"}},
		})
		require.Error(t, err)
	})
}

func TestUpdateSeed(t *testing.T) {
	team := &models.Team{ID: 10, TournamentID: 1, Seed: 4}

	t.Run("overrides before any bracket exists", func(t *testing.T) {
		teamRepo := newFakeTeamRepo(team)
		svc := NewTeamService(nil, teamRepo, newFakeBracketRepo(), discardLogger())

		updated, err := svc.UpdateSeed(context.Background(), 10, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, updated.Seed)
		assert.Equal(t, 1, teamRepo.seeds[10])
	})

	t.Run("locked once a bracket was generated", func(t *testing.T) {
		teamRepo := newFakeTeamRepo(team)
		bracketRepo := newFakeBracketRepo(&models.Bracket{ID: 1, TournamentID: 1, Status: models.BracketStatusActive})
		svc := NewTeamService(nil, teamRepo, bracketRepo, discardLogger())

		_, err := svc.UpdateSeed(context.Background(), 10, 1)

		require.ErrorIs(t, err, ErrSeedingLocked)
		assert.Empty(t, teamRepo.seeds)
	})

	t.Run("unknown team", func(t *testing.T) {
		svc := NewTeamService(nil, newFakeTeamRepo(), newFakeBracketRepo(), discardLogger())

		_, err := svc.UpdateSeed(context.Background(), 99, 1)

		require.ErrorIs(t, err, ErrTeamNotFound)
	})
}
