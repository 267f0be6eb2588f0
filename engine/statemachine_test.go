package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func intPtr(v int) *int { return &v }

func newTestMatch(status models.MatchStatus) *models.Match {
	return &models.Match{
		ID:      1,
		Team1ID: intPtr(10),
		Team2ID: intPtr(20),
		Status:  status,
	}
}

func singleTo11() models.MatchFormat {
	return models.MatchFormat{
		Type:        models.FormatSingle,
		GamesToWin:  1,
		PointsToWin: 11,
		WinByTwo:    true,
		PointCap:    15,
	}
}

func TestCallMatch(t *testing.T) {
	t.Run("assigns court and moves to calling", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)

		err := CallMatch(m, "Court 3")

		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCalling, m.Status)
		require.NotNil(t, m.Court)
		assert.Equal(t, "Court 3", *m.Court)
	})

	t.Run("fails with unresolved slot", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)
		m.Team2ID = nil

		err := CallMatch(m, "Court 3")

		require.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, models.MatchStatusUpcoming, m.Status)
	})

	t.Run("fails without a court", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)

		require.ErrorIs(t, CallMatch(m, ""), ErrInvalidTransition)
	})

	t.Run("fails from in_progress", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.ErrorIs(t, CallMatch(m, "Court 3"), ErrInvalidTransition)
	})

	t.Run("fails on terminal match", func(t *testing.T) {
		for _, status := range []models.MatchStatus{models.MatchStatusCompleted, models.MatchStatusBye, models.MatchStatusForfeit} {
			m := newTestMatch(status)
			require.ErrorIs(t, CallMatch(m, "Court 3"), ErrIllegalStateTransition, "status %s", status)
		}
	})
}

func TestStartMatch(t *testing.T) {
	now := time.Now()

	t.Run("from upcoming", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)

		require.NoError(t, StartMatch(m, now))
		assert.Equal(t, models.MatchStatusInProgress, m.Status)
		require.NotNil(t, m.StartedAt)
		assert.Equal(t, now, *m.StartedAt)
	})

	t.Run("from calling", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusCalling)

		require.NoError(t, StartMatch(m, now))
		assert.Equal(t, models.MatchStatusInProgress, m.Status)
	})

	t.Run("fails with unresolved slot", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)
		m.Team1ID = nil

		require.ErrorIs(t, StartMatch(m, now), ErrInvalidTransition)
	})

	t.Run("fails on terminal match", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusCompleted)

		require.ErrorIs(t, StartMatch(m, now), ErrIllegalStateTransition)
	})
}

func TestSubmitScoreSingleGame(t *testing.T) {
	format := singleTo11()
	now := time.Now()

	t.Run("non-decisive score is rejected and nothing is recorded", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		err := SubmitScore(m, models.GameScore{Team1: 10, Team2: 9}, format, now)

		require.ErrorIs(t, err, ErrInvalidScore)
		assert.Equal(t, models.MatchStatusInProgress, m.Status)
		assert.Empty(t, m.Games)
		assert.Nil(t, m.Winner)
	})

	t.Run("decisive score completes the match", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 9}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		require.NotNil(t, m.Winner)
		assert.Equal(t, models.SideTeam1, *m.Winner)
		require.NotNil(t, m.CompletedAt)
		assert.Len(t, m.Games, 1)
	})

	t.Run("blowout completes with winner team1", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 4}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		assert.Equal(t, models.SideTeam1, *m.Winner)
	})

	t.Run("win by two not satisfied", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 10}, format, now), ErrInvalidScore)
	})

	t.Run("extended game satisfies win by two", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 13, Team2: 11}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
	})

	t.Run("point cap short-circuits win by two", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 14, Team2: 15}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		assert.Equal(t, models.SideTeam2, *m.Winner)
	})

	t.Run("score beyond the cap is rejected", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: 16, Team2: 14}, format, now), ErrInvalidScore)
	})

	t.Run("negative points are rejected", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: -1, Team2: 11}, format, now), ErrInvalidScore)
	})

	t.Run("tied game is rejected", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 11}, format, now), ErrInvalidScore)
	})

	t.Run("fails before the match started", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)

		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 9}, format, now), ErrInvalidTransition)
	})
}

func TestSubmitScoreBestOfThree(t *testing.T) {
	format := models.MatchFormat{
		Type:        models.FormatBestOf,
		GamesToWin:  2,
		PointsToWin: 11,
		WinByTwo:    true,
		PointCap:    15,
	}
	now := time.Now()

	t.Run("completes the instant the decisive game lands", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 9}, format, now))
		assert.Equal(t, models.MatchStatusInProgress, m.Status)
		assert.Nil(t, m.Winner)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 7, Team2: 11}, format, now))
		assert.Equal(t, models.MatchStatusInProgress, m.Status)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 8}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		assert.Equal(t, models.SideTeam1, *m.Winner)
		assert.Len(t, m.Games, 3)
	})

	t.Run("straight games end after two", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)

		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 3}, format, now))
		require.NoError(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 6}, format, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		assert.Len(t, m.Games, 2)

		// Trailing games are never played.
		require.ErrorIs(t, SubmitScore(m, models.GameScore{Team1: 11, Team2: 0}, format, now), ErrIllegalStateTransition)
		assert.Len(t, m.Games, 2)
	})
}

func TestMarkForfeit(t *testing.T) {
	now := time.Now()

	t.Run("opposite side wins", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusInProgress)
		m.Games = []models.GameScore{{Team1: 11, Team2: 7}}

		require.NoError(t, MarkForfeit(m, models.SideTeam1, now))
		assert.Equal(t, models.MatchStatusForfeit, m.Status)
		require.NotNil(t, m.Winner)
		assert.Equal(t, models.SideTeam2, *m.Winner)
		require.NotNil(t, m.ForfeitedBy)
		assert.Equal(t, models.SideTeam1, *m.ForfeitedBy)
		// Partial scores stay for audit.
		assert.Len(t, m.Games, 1)
	})

	t.Run("from upcoming", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)

		require.NoError(t, MarkForfeit(m, models.SideTeam2, now))
		assert.Equal(t, models.SideTeam1, *m.Winner)
	})

	t.Run("fails on terminal match", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusForfeit)

		require.ErrorIs(t, MarkForfeit(m, models.SideTeam1, now), ErrIllegalStateTransition)
	})

	t.Run("fails for unresolved side", func(t *testing.T) {
		m := newTestMatch(models.MatchStatusUpcoming)
		m.Team2ID = nil

		require.ErrorIs(t, MarkForfeit(m, models.SideTeam2, now), ErrInvalidTransition)
	})
}
