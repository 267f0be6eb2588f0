package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/tournament-engine/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchVersionConflict - the row changed since it was read; the
	// second writer of a concurrent pair lands here.
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByPool(ctx context.Context, poolID int) ([]*models.Match, error)
	ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error)

	// Update persists the mutable state of a match guarded by its version:
	// the write only lands when the stored version still equals
	// match.Version, and increments it.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error

	UpdateSlots(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID *int) error
	UpdateAdvancesTo(ctx context.Context, exec SQLExecutor, id int, winnerTo, loserTo *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, pool_id, bracket_id, round, position,
	team1_id, team2_id, games, status, court, scheduled_at, started_at,
	completed_at, winner, forfeited_by, referee_note, winner_advances_to,
	loser_advances_to, version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	games, err := marshalGames(match.Games)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO matches
			(tournament_id, pool_id, bracket_id, round, position, team1_id, team2_id,
			 games, status, court, scheduled_at, started_at, completed_at, winner,
			 forfeited_by, referee_note, winner_advances_to, loser_advances_to, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1)
		RETURNING id, version, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.PoolID,
		match.BracketID,
		match.Round,
		match.Position,
		match.Team1ID,
		match.Team2ID,
		games,
		match.Status,
		match.Court,
		match.ScheduledAt,
		match.StartedAt,
		match.CompletedAt,
		sideOrNil(match.Winner),
		sideOrNil(match.ForfeitedBy),
		match.RefereeNote,
		match.WinnerAdvancesTo,
		match.LoserAdvancesTo,
	).Scan(&match.ID, &match.Version, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByPool(ctx context.Context, poolID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE pool_id = $1 ORDER BY round ASC, position ASC`
	return r.list(ctx, query, poolID)
}

func (r *postgresMatchRepository) ListByBracket(ctx context.Context, bracketID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE bracket_id = $1 ORDER BY round ASC, position ASC`
	return r.list(ctx, query, bracketID)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	games, err := marshalGames(match.Games)
	if err != nil {
		return err
	}
	query := `
		UPDATE matches
		SET games = $1, status = $2, court = $3, started_at = $4, completed_at = $5,
		    winner = $6, forfeited_by = $7, referee_note = $8, version = version + 1
		WHERE id = $9 AND version = $10`

	result, err := exec.ExecContext(ctx, query,
		games,
		match.Status,
		match.Court,
		match.StartedAt,
		match.CompletedAt,
		sideOrNil(match.Winner),
		sideOrNil(match.ForfeitedBy),
		match.RefereeNote,
		match.ID,
		match.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a stale version from a missing row.
		if _, getErr := r.GetByID(ctx, match.ID); getErr != nil {
			return getErr
		}
		return ErrMatchVersionConflict
	}
	match.Version++
	return nil
}

func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID *int) error {
	query := `UPDATE matches SET team1_id = $1, team2_id = $2, version = version + 1 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, team1ID, team2ID, id)
	if err != nil {
		return fmt.Errorf("failed to update slots of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateAdvancesTo(ctx context.Context, exec SQLExecutor, id int, winnerTo, loserTo *int) error {
	query := `UPDATE matches SET winner_advances_to = $1, loser_advances_to = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, winnerTo, loserTo, id)
	if err != nil {
		return fmt.Errorf("failed to link match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		match   models.Match
		games   []byte
		winner  sql.NullString
		forfeit sql.NullString
	)
	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.PoolID,
		&match.BracketID,
		&match.Round,
		&match.Position,
		&match.Team1ID,
		&match.Team2ID,
		&games,
		&match.Status,
		&match.Court,
		&match.ScheduledAt,
		&match.StartedAt,
		&match.CompletedAt,
		&winner,
		&forfeit,
		&match.RefereeNote,
		&match.WinnerAdvancesTo,
		&match.LoserAdvancesTo,
		&match.Version,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(games) > 0 {
		if err := json.Unmarshal(games, &match.Games); err != nil {
			return nil, fmt.Errorf("failed to decode games of match %d: %w", match.ID, err)
		}
	}
	if winner.Valid {
		side := models.MatchSide(winner.String)
		match.Winner = &side
	}
	if forfeit.Valid {
		side := models.MatchSide(forfeit.String)
		match.ForfeitedBy = &side
	}
	return &match, nil
}

func marshalGames(games []models.GameScore) ([]byte, error) {
	if games == nil {
		games = []models.GameScore{}
	}
	data, err := json.Marshal(games)
	if err != nil {
		return nil, fmt.Errorf("failed to encode games: %w", err)
	}
	return data, nil
}

func sideOrNil(side *models.MatchSide) interface{} {
	if side == nil {
		return nil
	}
	return string(*side)
}
