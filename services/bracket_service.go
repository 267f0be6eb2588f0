package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/tournament-engine/engine"
	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
)

// GenerateBracketParams configures bracket creation. Seeds come either
// from the registered teams' stored seeds, or, with FromPools set, from
// the pool standings combined by the chosen seeding method once every pool
// match has finished.
type GenerateBracketParams struct {
	TournamentID  int                  `json:"tournament_id"`
	Type          models.BracketType   `json:"type"`
	ThirdPlace    bool                 `json:"third_place"`
	FromPools     bool                 `json:"from_pools"`
	SeedingMethod engine.SeedingMethod `json:"seeding_method,omitempty"`
	Format        *models.MatchFormat  `json:"format,omitempty"`
	FinalFormat   *models.MatchFormat  `json:"final_format,omitempty"`
	ScheduledAt   *time.Time           `json:"scheduled_at,omitempty"`
}

// BracketStatusView is the full derived picture of a bracket: the stored
// record, its matches grouped by round and the per-round completion flags
// recomputed from match statuses.
type BracketStatusView struct {
	Bracket        *models.Bracket         `json:"bracket"`
	Rounds         []RoundStatusView       `json:"rounds"`
	MatchesByRound map[int][]*models.Match `json:"-"`
}

type RoundStatusView struct {
	Round    models.Round    `json:"round"`
	Matches  []*models.Match `json:"matches"`
	Complete bool            `json:"complete"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*BracketStatusView, error)
	GetBracketStatus(ctx context.Context, bracketID int) (*BracketStatusView, error)
	IsRoundComplete(ctx context.Context, bracketID, roundNumber int) (bool, error)
	GetChampion(ctx context.Context, bracketID int) (*models.Team, error)
	ManualAdvance(ctx context.Context, matchID int, winner models.MatchSide, reason string) (*models.Match, error)
	UndoAdvancement(ctx context.Context, matchID int) error
}

type bracketService struct {
	db          *sql.DB
	bracketRepo repositories.BracketRepository
	matchRepo   repositories.MatchRepository
	poolRepo    repositories.PoolRepository
	teamRepo    repositories.TeamRepository
	archiver    *ResultsArchiver
	hub         *engine.Hub
	logger      *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	bracketRepo repositories.BracketRepository,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	teamRepo repositories.TeamRepository,
	archiver *ResultsArchiver,
	hub *engine.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:          db,
		bracketRepo: bracketRepo,
		matchRepo:   matchRepo,
		poolRepo:    poolRepo,
		teamRepo:    teamRepo,
		archiver:    archiver,
		hub:         hub,
		logger:      logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*BracketStatusView, error) {
	seedOrder, err := s.resolveSeedOrder(ctx, params)
	if err != nil {
		return nil, err
	}

	generated, numRounds, err := engine.GenerateSingleElimination(seedOrder, params.ThirdPlace)
	if err != nil {
		return nil, err
	}

	format := models.DefaultFormat()
	if params.Format != nil {
		format = *params.Format
	}
	rounds := make([]models.Round, numRounds)
	for i := range rounds {
		rounds[i] = models.Round{
			Number: i + 1,
			Label:  models.RoundLabel(i+1, numRounds),
			Format: format,
		}
	}
	if params.FinalFormat != nil {
		rounds[numRounds-1].Format = *params.FinalFormat
	}

	bracketType := params.Type
	if bracketType == "" {
		bracketType = models.BracketWinners
	}
	bracket := &models.Bracket{
		TournamentID: params.TournamentID,
		Type:         bracketType,
		Status:       models.BracketStatusActive,
		Rounds:       rounds,
	}

	scheduledAt := time.Now().UTC().Add(15 * time.Minute)
	if params.ScheduledAt != nil {
		scheduledAt = *params.ScheduledAt
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bracketRepo.Create(ctx, tx, bracket); err != nil {
			return err
		}

		// First pass: create every match row. Byes are terminal from birth.
		type slotKey struct{ round, position int }
		created := make(map[slotKey]*models.Match, len(generated))
		var matches []*models.Match
		var thirdPlaceMatch *models.Match
		for _, gm := range generated {
			match := &models.Match{
				TournamentID: params.TournamentID,
				BracketID:    &bracket.ID,
				Round:        gm.Round,
				Position:     gm.Position,
				Team1ID:      gm.Team1ID,
				Team2ID:      gm.Team2ID,
				Status:       models.MatchStatusUpcoming,
				ScheduledAt:  scheduledAt,
			}
			if gm.Bye {
				match.Status = models.MatchStatusBye
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return err
			}
			if gm.ThirdPlace {
				thirdPlaceMatch = match
			} else {
				created[slotKey{gm.Round, gm.Position}] = match
			}
			matches = append(matches, match)
		}

		// Second pass: link forward pointers along the p -> ceil(p/2) tree.
		// Semifinal losers feed the third-place match when one exists.
		for key, match := range created {
			if key.round == numRounds {
				continue
			}
			target := created[slotKey{key.round + 1, (key.position + 1) / 2}]
			if target == nil {
				return fmt.Errorf("bracket %d has no target for match at round %d position %d", bracket.ID, key.round, key.position)
			}
			match.WinnerAdvancesTo = &target.ID
			if thirdPlaceMatch != nil && key.round == numRounds-1 {
				match.LoserAdvancesTo = &thirdPlaceMatch.ID
			}
			if err := s.matchRepo.UpdateAdvancesTo(ctx, tx, match.ID, match.WinnerAdvancesTo, match.LoserAdvancesTo); err != nil {
				return err
			}
		}

		// Byes advance immediately: the sole present team is the winner by
		// definition and must appear in its round-2 slot at generation time.
		index := engine.BuildMatchIndex(matches)
		for _, match := range matches {
			if match.Status != models.MatchStatusBye {
				continue
			}
			if _, err := persistAdvancement(ctx, tx, s.matchRepo, s.bracketRepo, bracket, index, match); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("bracket_id", bracket.ID),
		slog.Int("tournament_id", params.TournamentID),
		slog.Int("teams", len(seedOrder)),
		slog.Int("rounds", numRounds),
	)
	s.hub.BroadcastToRoom(roomID(params.TournamentID), engine.EventBracketUpdated, bracket)

	return s.GetBracketStatus(ctx, bracket.ID)
}

// resolveSeedOrder produces the team order fed to the generator, strongest
// first: either stored registration seeds or combined pool standings.
func (s *bracketService) resolveSeedOrder(ctx context.Context, params GenerateBracketParams) ([]int, error) {
	if !params.FromPools {
		teams, err := s.teamRepo.ListByTournament(ctx, params.TournamentID)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			return nil, ErrNoTeamsRegistered
		}
		seedOrder := make([]int, len(teams))
		for i, t := range teams {
			seedOrder[i] = t.ID
		}
		return seedOrder, nil
	}

	pools, err := s.poolRepo.ListByTournament(ctx, params.TournamentID)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, ErrPoolNotFound
	}

	standingsPerPool := make([][]models.PoolStanding, len(pools))
	g, gCtx := errgroup.WithContext(ctx)
	for i, pool := range pools {
		i, pool := i, pool
		g.Go(func() error {
			matches, err := s.matchRepo.ListByPool(gCtx, pool.ID)
			if err != nil {
				return err
			}
			if models.PoolStatusOf(matches) != models.PoolStatusCompleted {
				return fmt.Errorf("%w: pool %d", ErrPoolsNotCompleted, pool.ID)
			}
			teams, err := s.teamRepo.ListByIDs(gCtx, pool.TeamIDs)
			if err != nil {
				return err
			}
			standingsPerPool[i] = engine.CalculateStandings(teams, matches, engine.ParseTiebreakers(pool.Tiebreakers))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	method := params.SeedingMethod
	if method == "" {
		method = engine.SeedSnake
	}
	return engine.CombinePoolStandings(standingsPerPool, method)
}

func (s *bracketService) GetBracketStatus(ctx context.Context, bracketID int) (*BracketStatusView, error) {
	var (
		bracket *models.Bracket
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bracket, err = s.bracketRepo.GetByID(gCtx, bracketID)
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return ErrBracketNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByBracket(gCtx, bracketID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &BracketStatusView{
		Bracket:        bracket,
		MatchesByRound: make(map[int][]*models.Match, len(bracket.Rounds)),
	}
	for _, m := range matches {
		view.MatchesByRound[m.Round] = append(view.MatchesByRound[m.Round], m)
	}
	for _, round := range bracket.Rounds {
		view.Rounds = append(view.Rounds, RoundStatusView{
			Round:    round,
			Matches:  view.MatchesByRound[round.Number],
			Complete: engine.IsRoundComplete(matches, round.Number),
		})
	}
	return view, nil
}

func (s *bracketService) IsRoundComplete(ctx context.Context, bracketID, roundNumber int) (bool, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return false, ErrBracketNotFound
		}
		return false, err
	}
	if roundNumber < 1 || roundNumber > bracket.FinalRound() {
		return false, fmt.Errorf("%w: round %d of bracket %d", ErrRoundNotFound, roundNumber, bracketID)
	}
	matches, err := s.matchRepo.ListByBracket(ctx, bracketID)
	if err != nil {
		return false, err
	}
	return engine.IsRoundComplete(matches, roundNumber), nil
}

func (s *bracketService) GetChampion(ctx context.Context, bracketID int) (*models.Team, error) {
	bracket, err := s.bracketRepo.GetByID(ctx, bracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	if bracket.ChampionTeamID == nil {
		return nil, ErrChampionNotDecided
	}
	champion, err := s.teamRepo.GetByID(ctx, *bracket.ChampionTeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return champion, nil
}

func (s *bracketService) ManualAdvance(ctx context.Context, matchID int, winner models.MatchSide, reason string) (*models.Match, error) {
	match, bracket, err := s.loadBracketMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var result *engine.AdvanceResult
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		siblings, err := s.matchRepo.ListByBracket(ctx, bracket.ID)
		if err != nil {
			return err
		}
		index := engine.BuildMatchIndex(siblings)
		index[match.ID] = match

		result, err = engine.ManualAdvance(bracket, index, match, winner, reason, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := s.matchRepo.Update(ctx, tx, match); err != nil {
			return mapVersionConflict(err)
		}
		return persistAdvanceResult(ctx, tx, s.matchRepo, s.bracketRepo, bracket, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match advanced manually",
		slog.Int("match_id", matchID),
		slog.String("winner", string(winner)),
		slog.String("reason", reason),
	)
	if result.BracketCompleted {
		s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventBracketCompleted, bracket)
		s.archiver.ArchiveBracket(ctx, bracket)
	} else {
		s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventBracketUpdated, bracket)
	}
	return match, nil
}

func (s *bracketService) UndoAdvancement(ctx context.Context, matchID int) error {
	match, bracket, err := s.loadBracketMatch(ctx, matchID)
	if err != nil {
		return err
	}

	wasCompleted := bracket.Status == models.BracketStatusCompleted
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		siblings, err := s.matchRepo.ListByBracket(ctx, bracket.ID)
		if err != nil {
			return err
		}
		index := engine.BuildMatchIndex(siblings)
		index[match.ID] = match

		result, err := engine.UndoAdvancement(bracket, index, match)
		if err != nil {
			return err
		}
		for _, target := range []*models.Match{result.WinnerTarget, result.LoserTarget} {
			if target == nil {
				continue
			}
			if err := s.matchRepo.UpdateSlots(ctx, tx, target.ID, target.Team1ID, target.Team2ID); err != nil {
				return err
			}
		}
		if wasCompleted && bracket.Status == models.BracketStatusActive {
			if err := s.bracketRepo.UpdateStatus(ctx, tx, bracket.ID, bracket.Status, bracket.ChampionTeamID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("advancement undone", slog.Int("match_id", matchID))
	if wasCompleted && bracket.Status == models.BracketStatusActive {
		s.archiver.RemoveBracket(ctx, bracket)
	}
	s.hub.BroadcastToRoom(roomID(match.TournamentID), engine.EventBracketUpdated, bracket)
	return nil
}

func (s *bracketService) loadBracketMatch(ctx context.Context, matchID int) (*models.Match, *models.Bracket, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, err
	}
	if match.BracketID == nil {
		return nil, nil, fmt.Errorf("%w: match %d", ErrNotABracketMatch, matchID)
	}
	bracket, err := s.bracketRepo.GetByID(ctx, *match.BracketID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, nil, ErrBracketNotFound
		}
		return nil, nil, err
	}
	return match, bracket, nil
}
