package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming   MatchStatus = "upcoming"
	MatchStatusCalling    MatchStatus = "calling"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusBye        MatchStatus = "bye"
	MatchStatusForfeit    MatchStatus = "forfeit"
)

// Terminal reports whether no further transition may leave this status.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusBye || s == MatchStatusForfeit
}

// MatchSide discriminates the two slots of a match.
type MatchSide string

const (
	SideTeam1 MatchSide = "team1"
	SideTeam2 MatchSide = "team2"
)

// Other returns the opposite side.
func (s MatchSide) Other() MatchSide {
	if s == SideTeam1 {
		return SideTeam2
	}
	return SideTeam1
}

// GameScore is the point total of one game within a match.
type GameScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Match covers both pool and bracket play. Exactly one of PoolID/BracketID
// is set. Team slots are nullable: a bracket slot may be unresolved pending
// an earlier match, or permanently empty for a bye. Games are append-only
// and mutate only through the engine state machine until terminal.
//
// Version implements the optimistic-concurrency guard: every persisted
// mutation increments it, and a stale writer is rejected.
type Match struct {
	ID           int  `json:"id" db:"id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	PoolID       *int `json:"pool_id,omitempty" db:"pool_id"`
	BracketID    *int `json:"bracket_id,omitempty" db:"bracket_id"`

	// Round/Position place a bracket match in its tree: the match at
	// position p in round r feeds the match at position ceil(p/2) in
	// round r+1. Pool matches use Round 1 and a sequential Position.
	Round    int `json:"round" db:"round"`
	Position int `json:"position" db:"position"`

	Team1ID *int `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID *int `json:"team2_id,omitempty" db:"team2_id"`

	Games  []GameScore `json:"games" db:"-"`
	Status MatchStatus `json:"status" db:"status"`

	Court       *string    `json:"court,omitempty" db:"court"`
	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	Winner      *MatchSide `json:"winner,omitempty" db:"winner"`
	ForfeitedBy *MatchSide `json:"forfeited_by,omitempty" db:"forfeited_by"`

	// RefereeNote records the textual reason of a manual advancement.
	RefereeNote *string `json:"referee_note,omitempty" db:"referee_note"`

	WinnerAdvancesTo *int `json:"winner_advances_to,omitempty" db:"winner_advances_to"`
	LoserAdvancesTo  *int `json:"loser_advances_to,omitempty" db:"loser_advances_to"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TeamID returns the team occupying the given side, nil if unresolved.
func (m *Match) TeamID(side MatchSide) *int {
	if side == SideTeam1 {
		return m.Team1ID
	}
	return m.Team2ID
}

// WinnerTeamID resolves the winning team of a terminal match. For a bye the
// sole present team is the winner by definition.
func (m *Match) WinnerTeamID() *int {
	switch m.Status {
	case MatchStatusCompleted, MatchStatusForfeit:
		if m.Winner == nil {
			return nil
		}
		return m.TeamID(*m.Winner)
	case MatchStatusBye:
		if m.Team1ID != nil {
			return m.Team1ID
		}
		return m.Team2ID
	}
	return nil
}

// LoserTeamID resolves the losing team of a terminal match, nil for byes.
func (m *Match) LoserTeamID() *int {
	switch m.Status {
	case MatchStatusCompleted, MatchStatusForfeit:
		if m.Winner == nil {
			return nil
		}
		return m.TeamID(m.Winner.Other())
	}
	return nil
}

// PointsFor sums the game points scored by the given side.
func (m *Match) PointsFor(side MatchSide) int {
	total := 0
	for _, g := range m.Games {
		if side == SideTeam1 {
			total += g.Team1
		} else {
			total += g.Team2
		}
	}
	return total
}
