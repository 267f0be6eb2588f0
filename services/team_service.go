package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

// RegisterTeamParams describes one entry at registration time: one player
// for singles, two for doubles.
type RegisterTeamParams struct {
	TournamentID int             `json:"tournament_id"`
	Name         string          `json:"name"`
	Seed         int             `json:"seed"`
	Players      []models.Player `json:"players"`
}

// TeamService covers event setup: registering entries and overriding seeds
// during the transition phase before bracket generation locks them.
type TeamService interface {
	RegisterTeam(ctx context.Context, params RegisterTeamParams) (*models.Team, error)
	UpdateSeed(ctx context.Context, teamID, seed int) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error)
}

type teamService struct {
	db          *sql.DB
	teamRepo    repositories.TeamRepository
	bracketRepo repositories.BracketRepository
	logger      *slog.Logger
}

func NewTeamService(
	db *sql.DB,
	teamRepo repositories.TeamRepository,
	bracketRepo repositories.BracketRepository,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		db:          db,
		teamRepo:    teamRepo,
		bracketRepo: bracketRepo,
		logger:      logger,
	}
}

func (s *teamService) RegisterTeam(ctx context.Context, params RegisterTeamParams) (*models.Team, error) {
	if len(params.Players) < 1 || len(params.Players) > 2 {
		return nil, fmt.Errorf("a team fields one or two players, got %d", len(params.Players))
	}
	if params.Seed < 1 {
		return nil, fmt.Errorf("seed must be a positive integer, got %d", params.Seed)
	}

	team := &models.Team{
		TournamentID: params.TournamentID,
		Name:         params.Name,
		Seed:         params.Seed,
		Players:      params.Players,
	}
	if err := s.teamRepo.Create(ctx, s.db, team); err != nil {
		return nil, err
	}
	s.logger.Info("team registered",
		slog.Int("team_id", team.ID),
		slog.Int("tournament_id", team.TournamentID),
		slog.Int("seed", team.Seed),
	)
	return team, nil
}

// UpdateSeed overrides a team's seed. Refused once any bracket exists for
// the tournament: the bracket tree was built from the old order and a silent
// reseed would desynchronize them.
func (s *teamService) UpdateSeed(ctx context.Context, teamID, seed int) (*models.Team, error) {
	if seed < 1 {
		return nil, fmt.Errorf("seed must be a positive integer, got %d", seed)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	brackets, err := s.bracketRepo.ListByTournament(ctx, team.TournamentID)
	if err != nil {
		return nil, err
	}
	if len(brackets) > 0 {
		return nil, fmt.Errorf("%w: tournament %d", ErrSeedingLocked, team.TournamentID)
	}

	if err := s.teamRepo.UpdateSeed(ctx, s.db, teamID, seed); err != nil {
		return nil, err
	}
	team.Seed = seed
	s.logger.Info("seed updated", slog.Int("team_id", teamID), slog.Int("seed", seed))
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	return s.teamRepo.ListByTournament(ctx, tournamentID)
}
