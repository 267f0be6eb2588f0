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

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	GetByID(ctx context.Context, id int) (*models.Pool, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Pool, error)
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error {
	format, err := json.Marshal(pool.Format)
	if err != nil {
		return fmt.Errorf("failed to encode pool format: %w", err)
	}
	query := `
		INSERT INTO pools (tournament_id, name, team_ids, format, tiebreakers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err = exec.QueryRowContext(ctx, query, pool.TournamentID, pool.Name, pq.Array(pool.TeamIDs), format, pq.Array(pool.Tiebreakers)).Scan(&pool.ID)
	if err != nil {
		return fmt.Errorf("failed to insert pool: %w", err)
	}
	return nil
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	query := `SELECT id, tournament_id, name, team_ids, format, tiebreakers FROM pools WHERE id = $1`
	pool, err := scanPool(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to scan pool %d: %w", id, err)
	}
	return pool, nil
}

func (r *postgresPoolRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Pool, error) {
	query := `SELECT id, tournament_id, name, team_ids, format, tiebreakers FROM pools WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	pools := make([]*models.Pool, 0)
	for rows.Next() {
		pool, scanErr := scanPool(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", scanErr)
		}
		pools = append(pools, pool)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pool rows iteration: %w", err)
	}
	return pools, nil
}

func scanPool(row rowScanner) (*models.Pool, error) {
	var (
		pool        models.Pool
		teamIDs     pq.Int64Array
		format      []byte
		tiebreakers pq.StringArray
	)
	if err := row.Scan(&pool.ID, &pool.TournamentID, &pool.Name, &teamIDs, &format, &tiebreakers); err != nil {
		return nil, err
	}
	pool.Tiebreakers = []string(tiebreakers)
	pool.TeamIDs = make([]int, len(teamIDs))
	for i, id := range teamIDs {
		pool.TeamIDs[i] = int(id)
	}
	if len(format) > 0 {
		if err := json.Unmarshal(format, &pool.Format); err != nil {
			return nil, fmt.Errorf("failed to decode format of pool %d: %w", pool.ID, err)
		}
	}
	return &pool, nil
}
