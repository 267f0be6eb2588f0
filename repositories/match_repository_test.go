package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func newMockMatchRepo(t *testing.T) (MatchRepository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresMatchRepository(db), db, mock
}

func inProgressMatch() *models.Match {
	bracketID := 2
	team1 := 10
	team2 := 20
	return &models.Match{
		ID:           7,
		TournamentID: 1,
		BracketID:    &bracketID,
		Round:        1,
		Position:     1,
		Team1ID:      &team1,
		Team2ID:      &team2,
		Games:        []models.GameScore{{Team1: 11, Team2: 9}},
		Status:       models.MatchStatusInProgress,
		ScheduledAt:  time.Now(),
		Version:      3,
	}
}

func storedMatchRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tournament_id", "pool_id", "bracket_id", "round", "position",
		"team1_id", "team2_id", "games", "status", "court", "scheduled_at",
		"started_at", "completed_at", "winner", "forfeited_by", "referee_note",
		"winner_advances_to", "loser_advances_to", "version", "created_at",
	}).AddRow(
		7, 1, nil, 2, 1, 1,
		10, 20, []byte(`[{"team1":11,"team2":9}]`), "completed", nil, time.Now(),
		nil, nil, "team1", nil, nil,
		nil, nil, 4, time.Now(),
	)
}

func TestUpdateIncrementsVersion(t *testing.T) {
	repo, db, mock := newMockMatchRepo(t)
	match := inProgressMatch()

	mock.ExpectExec("UPDATE matches").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), db, match))
	assert.Equal(t, 4, match.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	repo, db, mock := newMockMatchRepo(t)
	match := inProgressMatch()

	// A concurrent writer already bumped the row to version 4: the guarded
	// UPDATE touches nothing, but the row itself is still there.
	mock.ExpectExec("UPDATE matches").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id").WillReturnRows(storedMatchRow())

	err := repo.Update(context.Background(), db, match)
	require.ErrorIs(t, err, ErrMatchVersionConflict)
	assert.Equal(t, 3, match.Version, "local copy must stay stale on conflict")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingMatch(t *testing.T) {
	repo, db, mock := newMockMatchRepo(t)
	match := inProgressMatch()

	mock.ExpectExec("UPDATE matches").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id").WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), db, match)
	require.ErrorIs(t, err, ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, mock := newMockMatchRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM matches WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
