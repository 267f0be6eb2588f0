package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

// MatchService is the command surface of the match state machine: every
// method loads the current match, applies one engine transition and
// persists the result under the optimistic version guard. Completing a
// bracket match additionally runs the advancer in the same transaction.
type MatchService interface {
	SubmitScore(ctx context.Context, matchID int, game models.GameScore) (*models.Match, error)
	MarkForfeit(ctx context.Context, matchID int, side models.MatchSide) (*models.Match, error)
	CallMatch(ctx context.Context, matchID int, court string) (*models.Match, error)
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
}

type matchService struct {
	db          *sql.DB
	matchRepo   repositories.MatchRepository
	poolRepo    repositories.PoolRepository
	bracketRepo repositories.BracketRepository
	archiver    *ResultsArchiver
	hub         *engine.Hub
	logger      *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	bracketRepo repositories.BracketRepository,
	archiver *ResultsArchiver,
	hub *engine.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:          db,
		matchRepo:   matchRepo,
		poolRepo:    poolRepo,
		bracketRepo: bracketRepo,
		archiver:    archiver,
		hub:         hub,
		logger:      logger,
	}
}

func (s *matchService) SubmitScore(ctx context.Context, matchID int, game models.GameScore) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	format, err := s.formatFor(ctx, match)
	if err != nil {
		return nil, err
	}
	if err := engine.SubmitScore(match, game, format, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.persistTransition(ctx, match)
}

func (s *matchService) MarkForfeit(ctx context.Context, matchID int, side models.MatchSide) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := engine.MarkForfeit(match, side, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.persistTransition(ctx, match)
}

func (s *matchService) CallMatch(ctx context.Context, matchID int, court string) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := engine.CallMatch(match, court); err != nil {
		return nil, err
	}
	return s.persistTransition(ctx, match)
}

func (s *matchService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := engine.StartMatch(match, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.persistTransition(ctx, match)
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// formatFor resolves the scoring format of a match: the pool's format for
// pool play, the round's format for bracket play.
func (s *matchService) formatFor(ctx context.Context, match *models.Match) (models.MatchFormat, error) {
	switch {
	case match.PoolID != nil:
		pool, err := s.poolRepo.GetByID(ctx, *match.PoolID)
		if err != nil {
			if errors.Is(err, repositories.ErrPoolNotFound) {
				return models.MatchFormat{}, ErrPoolNotFound
			}
			return models.MatchFormat{}, err
		}
		return pool.Format, nil
	case match.BracketID != nil:
		bracket, err := s.bracketRepo.GetByID(ctx, *match.BracketID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return models.MatchFormat{}, ErrBracketNotFound
			}
			return models.MatchFormat{}, err
		}
		return bracket.RoundFormat(match.Round), nil
	}
	return models.DefaultFormat(), nil
}

// persistTransition writes the mutated match and, when the transition
// terminated a bracket match, propagates the winner downstream within the
// same transaction. Live watchers are notified after commit.
func (s *matchService) persistTransition(ctx context.Context, match *models.Match) (*models.Match, error) {
	terminal := match.Status.Terminal()

	if !terminal || match.BracketID == nil {
		if err := s.matchRepo.Update(ctx, s.db, match); err != nil {
			return nil, mapVersionConflict(err)
		}
		s.broadcastMatch(match)
		if terminal && match.PoolID != nil {
			s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventStandingsUpdated, map[string]interface{}{"pool_id": *match.PoolID})
		}
		return match, nil
	}

	bracket, err := s.bracketRepo.GetByID(ctx, *match.BracketID)
	if err != nil {
		return nil, err
	}

	var result *engine.AdvanceResult
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.Update(ctx, tx, match); err != nil {
			return mapVersionConflict(err)
		}
		siblings, err := s.matchRepo.ListByBracket(ctx, *match.BracketID)
		if err != nil {
			return err
		}
		index := engine.BuildMatchIndex(siblings)
		index[match.ID] = match

		result, err = persistAdvancement(ctx, tx, s.matchRepo, s.bracketRepo, bracket, index, match)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.broadcastMatch(match)
	if result.BracketCompleted {
		s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventBracketCompleted, bracket)
		s.archiver.ArchiveBracket(ctx, bracket)
	} else {
		s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventBracketUpdated, bracket)
	}
	return match, nil
}

func (s *matchService) broadcastMatch(match *models.Match) {
	event := engine.EventMatchUpdated
	if match.Status.Terminal() {
		event = engine.EventMatchCompleted
	}
	s.hub.BroadcastToRoom(roomID(match.TournamentID), event, match)
}

func mapVersionConflict(err error) error {
	if errors.Is(err, repositories.ErrMatchVersionConflict) {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return err
}
