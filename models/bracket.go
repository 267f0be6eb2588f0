package models

import "strconv"

type BracketType string

const (
	BracketWinners     BracketType = "winners"
	BracketLosers      BracketType = "losers"
	BracketConsolation BracketType = "consolation"
)

type BracketStatus string

const (
	BracketStatusActive    BracketStatus = "active"
	BracketStatusCompleted BracketStatus = "completed"
)

// Round describes one level of a bracket. Numbers are 1-based and increase
// toward the final. Each round carries its own match format.
type Round struct {
	Number int         `json:"number"`
	Label  string      `json:"label"`
	Format MatchFormat `json:"format"`
}

// Bracket is an elimination tree. Round and per-round completion are
// derived from its matches; only the terminal champion is stored, recorded
// the moment the final resolves.
type Bracket struct {
	ID             int           `json:"id" db:"id"`
	TournamentID   int           `json:"tournament_id" db:"tournament_id"`
	Type           BracketType   `json:"type" db:"type"`
	Status         BracketStatus `json:"status" db:"status"`
	Rounds         []Round       `json:"rounds" db:"-"`
	ChampionTeamID *int          `json:"champion_team_id,omitempty" db:"champion_team_id"`
}

// FinalRound returns the highest round number, 0 for an empty bracket.
func (b *Bracket) FinalRound() int {
	if len(b.Rounds) == 0 {
		return 0
	}
	return b.Rounds[len(b.Rounds)-1].Number
}

// RoundFormat returns the format configured for a round, falling back to
// the default club format when the round is unknown.
func (b *Bracket) RoundFormat(number int) MatchFormat {
	for _, r := range b.Rounds {
		if r.Number == number {
			return r.Format
		}
	}
	return DefaultFormat()
}

// RoundLabel names a round by distance from the final.
func RoundLabel(number, totalRounds int) string {
	switch totalRounds - number {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	}
	return "Round " + strconv.Itoa(number)
}
