package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// persistAdvancement runs the advancer over a terminal bracket match and
// writes exactly what it touched: populated downstream slots and, when the
// final resolved, the bracket record itself.
func persistAdvancement(
	ctx context.Context,
	exec repositories.SQLExecutor,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	bracket *models.Bracket,
	index engine.MatchIndex,
	m *models.Match,
) (*engine.AdvanceResult, error) {
	result, err := engine.Advance(bracket, index, m)
	if err != nil {
		return nil, err
	}
	if err := persistAdvanceResult(ctx, exec, matchRepo, bracketRepo, bracket, result); err != nil {
		return nil, err
	}
	return result, nil
}

func persistAdvanceResult(
	ctx context.Context,
	exec repositories.SQLExecutor,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	bracket *models.Bracket,
	result *engine.AdvanceResult,
) error {
	for _, target := range []*models.Match{result.WinnerTarget, result.LoserTarget} {
		if target == nil {
			continue
		}
		if err := matchRepo.UpdateSlots(ctx, exec, target.ID, target.Team1ID, target.Team2ID); err != nil {
			return fmt.Errorf("failed to persist slot update of match %d: %w", target.ID, err)
		}
	}
	if result.BracketCompleted {
		if err := bracketRepo.UpdateStatus(ctx, exec, bracket.ID, bracket.Status, bracket.ChampionTeamID); err != nil {
			return fmt.Errorf("failed to persist bracket completion: %w", err)
		}
	}
	return nil
}

func roomID(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}
