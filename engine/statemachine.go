package engine

import (
	"fmt"
	"time"

	"github.com/courtside/tournament-engine/models"
)

// The match state machine. All functions mutate the match in memory and
// return a typed error when the transition is not allowed; persistence and
// event broadcast are the caller's concern.
//
// Terminal statuses (completed, bye, forfeit) admit no further transition.
// Bye is set once at bracket generation time and never entered at runtime.

// CallMatch moves an upcoming match to calling: a court is assigned and the
// players are being summoned. Both team slots must be resolved.
func CallMatch(m *models.Match, court string) error {
	if m.Status.Terminal() {
		return fmt.Errorf("%w: cannot call match %d (%s)", ErrIllegalStateTransition, m.ID, m.Status)
	}
	if m.Status != models.MatchStatusUpcoming {
		return fmt.Errorf("%w: cannot call match %d from status %s", ErrInvalidTransition, m.ID, m.Status)
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return fmt.Errorf("%w: match %d has an unresolved team slot", ErrInvalidTransition, m.ID)
	}
	if court == "" {
		return fmt.Errorf("%w: a court is required to call match %d", ErrInvalidTransition, m.ID)
	}
	m.Court = &court
	m.Status = models.MatchStatusCalling
	return nil
}

// StartMatch moves an upcoming or calling match to in_progress and records
// the start timestamp.
func StartMatch(m *models.Match, at time.Time) error {
	if m.Status.Terminal() {
		return fmt.Errorf("%w: cannot start match %d (%s)", ErrIllegalStateTransition, m.ID, m.Status)
	}
	if m.Status != models.MatchStatusUpcoming && m.Status != models.MatchStatusCalling {
		return fmt.Errorf("%w: cannot start match %d from status %s", ErrInvalidTransition, m.ID, m.Status)
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return fmt.Errorf("%w: match %d has an unresolved team slot", ErrInvalidTransition, m.ID)
	}
	m.StartedAt = &at
	m.Status = models.MatchStatusInProgress
	return nil
}

// SubmitScore appends one finished game to an in_progress match. The game
// must satisfy the format's win condition on its own (points-to-win, win by
// two unless the cap short-circuits it). The match transitions to completed
// the instant one side reaches the format's games-to-win count; no further
// games are accepted after that.
func SubmitScore(m *models.Match, game models.GameScore, format models.MatchFormat, at time.Time) error {
	if m.Status.Terminal() {
		return fmt.Errorf("%w: cannot score match %d (%s)", ErrIllegalStateTransition, m.ID, m.Status)
	}
	if m.Status != models.MatchStatusInProgress {
		return fmt.Errorf("%w: cannot score match %d from status %s", ErrInvalidTransition, m.ID, m.Status)
	}

	winner, err := gameWinner(game, format)
	if err != nil {
		return err
	}

	m.Games = append(m.Games, game)

	wins := 0
	for _, g := range m.Games {
		if side, _ := gameWinner(g, format); side == winner {
			wins++
		}
	}
	if wins >= format.GamesNeeded() {
		m.Winner = &winner
		m.Status = models.MatchStatusCompleted
		m.CompletedAt = &at
	}
	return nil
}

// MarkForfeit terminates a non-terminal match by withdrawal of one side.
// The opposite side is the winner; partial game scores already recorded are
// retained for audit but do not affect the winner determination.
func MarkForfeit(m *models.Match, forfeitingSide models.MatchSide, at time.Time) error {
	if m.Status.Terminal() {
		return fmt.Errorf("%w: cannot forfeit match %d (%s)", ErrIllegalStateTransition, m.ID, m.Status)
	}
	if m.TeamID(forfeitingSide) == nil {
		return fmt.Errorf("%w: forfeiting side %s of match %d is unresolved", ErrInvalidTransition, forfeitingSide, m.ID)
	}
	winner := forfeitingSide.Other()
	m.ForfeitedBy = &forfeitingSide
	m.Winner = &winner
	m.Status = models.MatchStatusForfeit
	m.CompletedAt = &at
	return nil
}

// gameWinner validates a single game against the format and returns the
// winning side. Validation order: non-negative points, winner reached
// points-to-win, win-by-two margin unless the point cap was reached (first
// to the cap wins regardless of margin).
func gameWinner(game models.GameScore, format models.MatchFormat) (models.MatchSide, error) {
	if game.Team1 < 0 || game.Team2 < 0 {
		return "", fmt.Errorf("%w: negative points %d-%d", ErrInvalidScore, game.Team1, game.Team2)
	}
	if game.Team1 == game.Team2 {
		return "", fmt.Errorf("%w: game cannot end tied at %d-%d", ErrInvalidScore, game.Team1, game.Team2)
	}

	high, low := game.Team1, game.Team2
	side := models.SideTeam1
	if game.Team2 > game.Team1 {
		high, low = game.Team2, game.Team1
		side = models.SideTeam2
	}

	if format.PointCap > 0 && high > format.PointCap {
		return "", fmt.Errorf("%w: %d exceeds the point cap of %d", ErrInvalidScore, high, format.PointCap)
	}
	if high < format.PointsToWin {
		return "", fmt.Errorf("%w: %d-%d is not decisive (points to win %d)", ErrInvalidScore, game.Team1, game.Team2, format.PointsToWin)
	}
	capReached := format.PointCap > 0 && high == format.PointCap
	if format.WinByTwo && !capReached && high-low < 2 {
		return "", fmt.Errorf("%w: %d-%d does not satisfy win by two", ErrInvalidScore, game.Team1, game.Team2)
	}
	return side, nil
}
