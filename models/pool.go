package models

type PoolStatus string

const (
	PoolStatusUpcoming   PoolStatus = "upcoming"
	PoolStatusInProgress PoolStatus = "in_progress"
	PoolStatusCompleted  PoolStatus = "completed"
)

// Pool is a round-robin group: every team plays every other team once.
// TeamIDs preserve the seeding order assigned at event setup.
type Pool struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Name         string      `json:"name" db:"name"`
	TeamIDs      []int       `json:"team_ids" db:"-"`
	Format       MatchFormat `json:"format" db:"-"`

	// Tiebreakers names the standings tiebreaker chain in order. An empty
	// or incomplete chain is extended with the seed fallback at
	// calculation time.
	Tiebreakers []string `json:"tiebreakers" db:"-"`
}

// PoolStatusOf derives a pool's status from its matches. It is recomputed
// on every query, never stored.
func PoolStatusOf(matches []*Match) PoolStatus {
	if len(matches) == 0 {
		return PoolStatusUpcoming
	}
	started := false
	allTerminal := true
	for _, m := range matches {
		if m.Status.Terminal() {
			started = true
			continue
		}
		allTerminal = false
		if m.Status != MatchStatusUpcoming {
			started = true
		}
	}
	switch {
	case allTerminal:
		return PoolStatusCompleted
	case started:
		return PoolStatusInProgress
	default:
		return PoolStatusUpcoming
	}
}

// PoolStanding is a computed projection over a pool's completed matches.
// Rank is 1-based and strictly total ordered; TiebreakerApplied names the
// rule that separated this team from its neighbors, empty when the plain
// win count decided it.
type PoolStanding struct {
	Rank              int    `json:"rank"`
	TeamID            int    `json:"team_id"`
	Team              *Team  `json:"team,omitempty"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	PointsFor         int    `json:"points_for"`
	PointsAgainst     int    `json:"points_against"`
	PointDiff         int    `json:"point_diff"`
	TiebreakerApplied string `json:"tiebreaker_applied,omitempty"`
}
