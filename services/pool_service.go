package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

// CreatePoolParams configures a round-robin pool. TeamIDs fix the seeding
// order within the pool; an omitted format or tiebreaker chain falls back
// to the defaults.
type CreatePoolParams struct {
	TournamentID int                 `json:"tournament_id"`
	Name         string              `json:"name"`
	TeamIDs      []int               `json:"team_ids"`
	Format       *models.MatchFormat `json:"format,omitempty"`
	Tiebreakers  []string            `json:"tiebreakers,omitempty"`
	ScheduledAt  *time.Time          `json:"scheduled_at,omitempty"`
}

// PoolView pairs a created pool with its generated schedule.
type PoolView struct {
	Pool    *models.Pool    `json:"pool"`
	Matches []*models.Match `json:"matches"`
}

type PoolService interface {
	CreatePool(ctx context.Context, params CreatePoolParams) (*PoolView, error)
}

type poolService struct {
	db        *sql.DB
	poolRepo  repositories.PoolRepository
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	hub       *engine.Hub
	logger    *slog.Logger
}

func NewPoolService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *engine.Hub,
	logger *slog.Logger,
) PoolService {
	return &poolService{
		db:        db,
		poolRepo:  poolRepo,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		hub:       hub,
		logger:    logger,
	}
}

// CreatePool persists the pool and materializes its full round-robin
// schedule in one transaction: every team plays every other team once.
func (s *poolService) CreatePool(ctx context.Context, params CreatePoolParams) (*PoolView, error) {
	if len(params.TeamIDs) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, len(params.TeamIDs))
	}
	teams, err := s.teamRepo.ListByIDs(ctx, params.TeamIDs)
	if err != nil {
		return nil, err
	}
	if len(teams) != len(params.TeamIDs) {
		return nil, fmt.Errorf("%w: %d of %d team ids exist", ErrTeamNotFound, len(teams), len(params.TeamIDs))
	}

	format := models.DefaultFormat()
	if params.Format != nil {
		format = *params.Format
	}
	pool := &models.Pool{
		TournamentID: params.TournamentID,
		Name:         params.Name,
		TeamIDs:      params.TeamIDs,
		Format:       format,
		Tiebreakers:  params.Tiebreakers,
	}

	scheduledAt := time.Now().UTC().Add(15 * time.Minute)
	if params.ScheduledAt != nil {
		scheduledAt = *params.ScheduledAt
	}

	var matches []*models.Match
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
			return err
		}
		matches, err = buildPoolMatches(pool, scheduledAt)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pool created",
		slog.Int("pool_id", pool.ID),
		slog.Int("tournament_id", params.TournamentID),
		slog.Int("teams", len(params.TeamIDs)),
		slog.Int("matches", len(matches)),
	)
	s.hub.BroadcastToRoom(roomID(params.TournamentID), engine.EventStandingsUpdated, map[string]interface{}{"pool_id": pool.ID})

	return &PoolView{Pool: pool, Matches: matches}, nil
}

// buildPoolMatches turns the round-robin pairings into match records for
// the given pool. The pool must already carry its ID.
func buildPoolMatches(pool *models.Pool, scheduledAt time.Time) ([]*models.Match, error) {
	generated, err := engine.GenerateRoundRobin(pool.TeamIDs)
	if err != nil {
		return nil, err
	}
	matches := make([]*models.Match, 0, len(generated))
	for _, gm := range generated {
		matches = append(matches, &models.Match{
			TournamentID: pool.TournamentID,
			PoolID:       &pool.ID,
			Round:        gm.Round,
			Position:     gm.Position,
			Team1ID:      gm.Team1ID,
			Team2ID:      gm.Team2ID,
			Status:       models.MatchStatusUpcoming,
			ScheduledAt:  scheduledAt,
		})
	}
	return matches, nil
}
