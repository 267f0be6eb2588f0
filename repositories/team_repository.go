package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtside/tournament-engine/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateSeed(ctx context.Context, exec SQLExecutor, id, seed int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	players, err := json.Marshal(team.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	query := `
		INSERT INTO teams (tournament_id, name, seed, players)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query, team.TournamentID, team.Name, team.Seed, players).Scan(&team.ID)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, tournament_id, name, seed, players FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Team, error) {
	query := `SELECT id, tournament_id, name, seed, players FROM teams WHERE id = ANY($1) ORDER BY seed ASC, id ASC`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `SELECT id, tournament_id, name, seed, players FROM teams WHERE tournament_id = $1 ORDER BY seed ASC, id ASC`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresTeamRepository) list(ctx context.Context, query string, arg interface{}) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateSeed(ctx context.Context, exec SQLExecutor, id, seed int) error {
	query := `UPDATE teams SET seed = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, seed, id)
	if err != nil {
		return fmt.Errorf("failed to update seed of team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		team    models.Team
		players []byte
	)
	if err := row.Scan(&team.ID, &team.TournamentID, &team.Name, &team.Seed, &players); err != nil {
		return nil, err
	}
	if len(players) > 0 {
		if err := json.Unmarshal(players, &team.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players of team %d: %w", team.ID, err)
		}
	}
	return &team, nil
}
