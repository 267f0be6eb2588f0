package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/tournament-engine/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, id int) (*models.Bracket, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus, championTeamID *int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	rounds, err := json.Marshal(bracket.Rounds)
	if err != nil {
		return fmt.Errorf("failed to encode rounds: %w", err)
	}
	query := `
		INSERT INTO brackets (tournament_id, type, status, rounds, champion_team_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query, bracket.TournamentID, bracket.Type, bracket.Status, rounds, bracket.ChampionTeamID).Scan(&bracket.ID)
	if err != nil {
		return fmt.Errorf("failed to insert bracket: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, id int) (*models.Bracket, error) {
	query := `SELECT id, tournament_id, type, status, rounds, champion_team_id FROM brackets WHERE id = $1`
	bracket, err := scanBracket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket %d: %w", id, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Bracket, error) {
	query := `SELECT id, tournament_id, type, status, rounds, champion_team_id FROM brackets WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		bracket, scanErr := scanBracket(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", scanErr)
		}
		brackets = append(brackets, bracket)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return brackets, nil
}

func (r *postgresBracketRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BracketStatus, championTeamID *int) error {
	query := `UPDATE brackets SET status = $1, champion_team_id = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, status, championTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func scanBracket(row rowScanner) (*models.Bracket, error) {
	var (
		bracket models.Bracket
		rounds  []byte
	)
	if err := row.Scan(&bracket.ID, &bracket.TournamentID, &bracket.Type, &bracket.Status, &rounds, &bracket.ChampionTeamID); err != nil {
		return nil, err
	}
	if len(rounds) > 0 {
		if err := json.Unmarshal(rounds, &bracket.Rounds); err != nil {
			return nil, fmt.Errorf("failed to decode rounds of bracket %d: %w", bracket.ID, err)
		}
	}
	return &bracket, nil
}
