package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

// PoolStandingsView pairs the computed standings with the pool's derived
// status. Nothing here is stored; the projection is rebuilt from the match
// list on every query.
type PoolStandingsView struct {
	Pool      *models.Pool          `json:"pool"`
	Status    models.PoolStatus     `json:"status"`
	Standings []models.PoolStanding `json:"standings"`
}

type StandingsService interface {
	GetPoolStandings(ctx context.Context, poolID int) (*PoolStandingsView, error)
}

type standingsService struct {
	poolRepo  repositories.PoolRepository
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
}

func NewStandingsService(
	poolRepo repositories.PoolRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		poolRepo:  poolRepo,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
	}
}

func (s *standingsService) GetPoolStandings(ctx context.Context, poolID int) (*PoolStandingsView, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	var (
		teams   []*models.Team
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByIDs(gCtx, pool.TeamIDs)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByPool(gCtx, poolID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PoolStandingsView{
		Pool:      pool,
		Status:    models.PoolStatusOf(matches),
		Standings: engine.CalculateStandings(teams, matches, engine.ParseTiebreakers(pool.Tiebreakers)),
	}, nil
}
