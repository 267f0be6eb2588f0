package models

import "strings"

// Team is a registered entry: one player for singles, two for doubles.
// Seed is unique within a pool or bracket context. Teams are immutable once
// a bracket is generated, except for seed overrides before lock.
type Team struct {
	ID           int      `json:"id" db:"id"`
	TournamentID int      `json:"tournament_id" db:"tournament_id"`
	Name         string   `json:"name" db:"name"`
	Seed         int      `json:"seed" db:"seed"`
	Players      []Player `json:"players" db:"-"`
}

// DisplayName falls back to the joined player names when no explicit
// team name was registered.
func (t *Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	names := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		names = append(names, p.DisplayName)
	}
	return strings.Join(names, " / ")
}
