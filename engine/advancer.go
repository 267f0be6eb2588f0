package engine

import (
	"fmt"
	"time"

	"github.com/courtside/tournament-engine/models"
)

// MatchIndex gives the advancer access to a bracket's matches by ID. Build
// it from whatever consistent snapshot the caller holds.
type MatchIndex map[int]*models.Match

// BuildMatchIndex indexes a match list by ID.
func BuildMatchIndex(matches []*models.Match) MatchIndex {
	index := make(MatchIndex, len(matches))
	for _, m := range matches {
		index[m.ID] = m
	}
	return index
}

// AdvanceResult reports what an advancement touched so the caller can
// persist exactly those records.
type AdvanceResult struct {
	// WinnerTarget/LoserTarget are the downstream matches whose slot was
	// populated, nil when the match feeds nothing on that path.
	WinnerTarget *models.Match
	LoserTarget  *models.Match

	// BracketCompleted is set when this advancement resolved the final.
	BracketCompleted bool
	ChampionTeamID   *int
}

// Advance propagates the result of a terminal match into the downstream
// slots. The winner fills slot 1 of the target when this match's position
// is odd, slot 2 when even, matching the p -> ceil(p/2) tree mapping. A
// populated target stays upcoming: advancement never auto-starts a match.
//
// When the match is the final (no winner target), the bracket transitions
// to completed and the winner is recorded as champion. A consolation match
// also has no winner target but decides third place, not the title, so only
// position 1 of the last round closes the bracket.
func Advance(bracket *models.Bracket, index MatchIndex, m *models.Match) (*AdvanceResult, error) {
	winnerID := m.WinnerTeamID()
	if winnerID == nil {
		return nil, fmt.Errorf("%w: match %d has no determined winner (%s)", ErrInvalidTransition, m.ID, m.Status)
	}

	result := &AdvanceResult{}

	if m.WinnerAdvancesTo == nil {
		if m.Round == bracket.FinalRound() && m.Position == 1 {
			bracket.Status = models.BracketStatusCompleted
			bracket.ChampionTeamID = winnerID
			result.BracketCompleted = true
			result.ChampionTeamID = winnerID
		}
	} else {
		target, err := populateSlot(index, *m.WinnerAdvancesTo, m.Position, winnerID)
		if err != nil {
			return nil, err
		}
		result.WinnerTarget = target
	}

	if m.LoserAdvancesTo != nil {
		if loserID := m.LoserTeamID(); loserID != nil {
			target, err := populateSlot(index, *m.LoserAdvancesTo, m.Position, loserID)
			if err != nil {
				return nil, err
			}
			result.LoserTarget = target
		}
	}
	return result, nil
}

// ManualAdvance forcibly records a winner for a disputed match, bypassing
// score validation, and runs the same downstream propagation. A textual
// reason is required and retained on the match.
func ManualAdvance(bracket *models.Bracket, index MatchIndex, m *models.Match, winner models.MatchSide, reason string, at time.Time) (*AdvanceResult, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: manual advancement requires a reason", ErrInvalidTransition)
	}
	if m.Status == models.MatchStatusBye || m.Status == models.MatchStatusForfeit {
		return nil, fmt.Errorf("%w: cannot manually advance match %d (%s)", ErrIllegalStateTransition, m.ID, m.Status)
	}
	if m.TeamID(winner) == nil {
		return nil, fmt.Errorf("%w: winning side %s of match %d is unresolved", ErrInvalidTransition, winner, m.ID)
	}

	m.Winner = &winner
	m.Status = models.MatchStatusCompleted
	m.CompletedAt = &at
	m.RefereeNote = &reason

	return Advance(bracket, index, m)
}

// UndoAdvancement reverses a single advancement by clearing the downstream
// slots it populated, failing with ErrAdvancementLocked once any downstream
// match has progressed past upcoming. The match's own result is untouched.
// Undoing the final clears the champion and reopens the bracket.
func UndoAdvancement(bracket *models.Bracket, index MatchIndex, m *models.Match) (*AdvanceResult, error) {
	winnerID := m.WinnerTeamID()
	if winnerID == nil {
		return nil, fmt.Errorf("%w: match %d has no advancement to undo", ErrInvalidTransition, m.ID)
	}

	result := &AdvanceResult{}

	if m.WinnerAdvancesTo == nil {
		if bracket.ChampionTeamID != nil && m.Round == bracket.FinalRound() && m.Position == 1 {
			bracket.ChampionTeamID = nil
			bracket.Status = models.BracketStatusActive
			result.BracketCompleted = false
		}
	} else {
		target, err := clearSlot(index, *m.WinnerAdvancesTo, m.Position, winnerID)
		if err != nil {
			return nil, err
		}
		result.WinnerTarget = target
	}

	if m.LoserAdvancesTo != nil {
		if loserID := m.LoserTeamID(); loserID != nil {
			target, err := clearSlot(index, *m.LoserAdvancesTo, m.Position, loserID)
			if err != nil {
				return nil, err
			}
			result.LoserTarget = target
		}
	}
	return result, nil
}

// IsRoundComplete reports whether every match of a bracket round reached a
// terminal status. Derived on demand, never stored.
func IsRoundComplete(matches []*models.Match, round int) bool {
	found := false
	for _, m := range matches {
		if m.Round != round {
			continue
		}
		found = true
		if !m.Status.Terminal() {
			return false
		}
	}
	return found
}

// slotSide maps a source position to the downstream slot it feeds.
func slotSide(position int) models.MatchSide {
	if position%2 == 1 {
		return models.SideTeam1
	}
	return models.SideTeam2
}

func populateSlot(index MatchIndex, targetID, sourcePosition int, teamID *int) (*models.Match, error) {
	target, ok := index[targetID]
	if !ok {
		return nil, fmt.Errorf("downstream match %d not found in bracket", targetID)
	}
	if slotSide(sourcePosition) == models.SideTeam1 {
		target.Team1ID = teamID
	} else {
		target.Team2ID = teamID
	}
	return target, nil
}

func clearSlot(index MatchIndex, targetID, sourcePosition int, teamID *int) (*models.Match, error) {
	target, ok := index[targetID]
	if !ok {
		return nil, fmt.Errorf("downstream match %d not found in bracket", targetID)
	}
	if target.Status != models.MatchStatusUpcoming {
		return nil, fmt.Errorf("%w: match %d is %s", ErrAdvancementLocked, target.ID, target.Status)
	}
	side := slotSide(sourcePosition)
	occupant := target.TeamID(side)
	if occupant == nil || teamID == nil || *occupant != *teamID {
		return nil, fmt.Errorf("%w: slot of match %d no longer holds the advanced team", ErrInvalidTransition, target.ID)
	}
	if side == models.SideTeam1 {
		target.Team1ID = nil
	} else {
		target.Team2ID = nil
	}
	return target, nil
}
