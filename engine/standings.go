package engine

import (
	"sort"

	"github.com/courtside/tournament-engine/models"
)

// TiebreakerRule names one link of the standings tiebreaker chain.
type TiebreakerRule string

const (
	TiebreakHeadToHead TiebreakerRule = "head_to_head"
	TiebreakPointDiff  TiebreakerRule = "point_differential"
	TiebreakPointsFor  TiebreakerRule = "points_for"
	TiebreakSeed       TiebreakerRule = "seed"
)

// DefaultTiebreakers is the chain used when a pool has no explicit
// configuration.
var DefaultTiebreakers = []TiebreakerRule{
	TiebreakHeadToHead,
	TiebreakPointDiff,
	TiebreakPointsFor,
	TiebreakSeed,
}

// ParseTiebreakers converts a pool's configured rule names into the chain,
// dropping names it does not recognize. An empty configuration falls back
// to the default chain.
func ParseTiebreakers(names []string) []TiebreakerRule {
	if len(names) == 0 {
		return DefaultTiebreakers
	}
	chain := make([]TiebreakerRule, 0, len(names))
	for _, name := range names {
		switch rule := TiebreakerRule(name); rule {
		case TiebreakHeadToHead, TiebreakPointDiff, TiebreakPointsFor, TiebreakSeed:
			chain = append(chain, rule)
		}
	}
	return chain
}

type standingEntry struct {
	standing models.PoolStanding
	seed     int
	// beaten holds the opponents this team beat, keyed by team ID, for
	// head-to-head resolution.
	beaten map[int]bool
}

// CalculateStandings ranks every team of a pool from its match list.
// Only terminal matches with a determined winner contribute: completed
// matches count record and points, forfeits count record only (partial
// scores are audit data, not results). Teams with no finished matches
// appear with a zero record.
//
// Ranks are assigned 1..N positionally over a strict total order: ties on
// win count are broken by the chain in order, and the seed fallback is
// appended implicitly when missing, so an unresolved tie cannot escape.
func CalculateStandings(teams []*models.Team, matches []*models.Match, chain []TiebreakerRule) []models.PoolStanding {
	entries := make([]*standingEntry, 0, len(teams))
	byTeam := make(map[int]*standingEntry, len(teams))
	for _, t := range teams {
		e := &standingEntry{
			standing: models.PoolStanding{TeamID: t.ID, Team: t},
			seed:     t.Seed,
			beaten:   make(map[int]bool),
		}
		entries = append(entries, e)
		byTeam[t.ID] = e
	}

	for _, m := range matches {
		winnerID := m.WinnerTeamID()
		loserID := m.LoserTeamID()
		if winnerID == nil || loserID == nil {
			continue
		}
		winner, loser := byTeam[*winnerID], byTeam[*loserID]
		if winner == nil || loser == nil {
			continue
		}
		winner.standing.Wins++
		loser.standing.Losses++
		winner.beaten[*loserID] = true

		if m.Status != models.MatchStatusCompleted {
			continue
		}
		winnerSide := *m.Winner
		winner.standing.PointsFor += m.PointsFor(winnerSide)
		winner.standing.PointsAgainst += m.PointsFor(winnerSide.Other())
		loser.standing.PointsFor += m.PointsFor(winnerSide.Other())
		loser.standing.PointsAgainst += m.PointsFor(winnerSide)
	}
	for _, e := range entries {
		e.standing.PointDiff = e.standing.PointsFor - e.standing.PointsAgainst
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].standing.Wins > entries[j].standing.Wins
	})

	chain = ensureSeedFallback(chain)

	ordered := make([]*standingEntry, 0, len(entries))
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].standing.Wins == entries[start].standing.Wins {
			end++
		}
		group := entries[start:end]
		resolveTies(group, chain)
		ordered = append(ordered, group...)
		start = end
	}

	standings := make([]models.PoolStanding, len(ordered))
	for i, e := range ordered {
		e.standing.Rank = i + 1
		standings[i] = e.standing
	}
	return standings
}

func ensureSeedFallback(chain []TiebreakerRule) []TiebreakerRule {
	for _, rule := range chain {
		if rule == TiebreakSeed {
			return chain
		}
	}
	out := make([]TiebreakerRule, len(chain), len(chain)+1)
	copy(out, chain)
	return append(out, TiebreakSeed)
}

// resolveTies orders a group of teams tied on win count, in place. The
// first rule that separates a pair decides it; pairs it leaves equal fall
// through to the next rule. The trailing seed rule is a total order, so the
// recursion always terminates with the group fully resolved.
func resolveTies(group []*standingEntry, chain []TiebreakerRule) {
	if len(group) <= 1 || len(chain) == 0 {
		return
	}
	rule := chain[0]

	if rule == TiebreakHeadToHead {
		if resolveHeadToHead(group) {
			return
		}
		resolveTies(group, chain[1:])
		return
	}

	less := func(a, b *standingEntry) bool {
		switch rule {
		case TiebreakPointDiff:
			return a.standing.PointDiff > b.standing.PointDiff
		case TiebreakPointsFor:
			return a.standing.PointsFor > b.standing.PointsFor
		case TiebreakSeed:
			// Lower seed ranks higher; team ID keeps the order total even
			// against malformed duplicate seeds.
			if a.seed != b.seed {
				return a.seed < b.seed
			}
			return a.standing.TeamID < b.standing.TeamID
		}
		return false
	}
	equal := func(a, b *standingEntry) bool {
		return !less(a, b) && !less(b, a)
	}

	sort.SliceStable(group, func(i, j int) bool {
		return less(group[i], group[j])
	})

	for start := 0; start < len(group); {
		end := start + 1
		for end < len(group) && equal(group[end], group[start]) {
			end++
		}
		if end-start < len(group) {
			// This rule separated the subgroup from at least one neighbor.
			for _, e := range group[start:end] {
				if e.standing.TiebreakerApplied == "" {
					e.standing.TiebreakerApplied = string(rule)
				}
			}
		}
		resolveTies(group[start:end], chain[1:])
		start = end
	}
}

// resolveHeadToHead applies the head-to-head rule to a tied group. For two
// teams it uses their direct result; for larger groups it requires the
// mini round-robin among the tied teams to produce strictly distinct win
// counts. Returns false when inapplicable so the caller falls through.
func resolveHeadToHead(group []*standingEntry) bool {
	if len(group) == 2 {
		a, b := group[0], group[1]
		switch {
		case a.beaten[b.standing.TeamID]:
		case b.beaten[a.standing.TeamID]:
			group[0], group[1] = b, a
		default:
			return false // never played each other
		}
		for _, e := range group {
			if e.standing.TiebreakerApplied == "" {
				e.standing.TiebreakerApplied = string(TiebreakHeadToHead)
			}
		}
		return true
	}

	inGroup := make(map[int]bool, len(group))
	for _, e := range group {
		inGroup[e.standing.TeamID] = true
	}
	miniWins := make(map[int]int, len(group))
	for _, e := range group {
		for beatenID := range e.beaten {
			if inGroup[beatenID] {
				miniWins[e.standing.TeamID]++
			}
		}
	}
	seen := make(map[int]bool, len(group))
	for _, e := range group {
		w := miniWins[e.standing.TeamID]
		if seen[w] {
			return false
		}
		seen[w] = true
	}

	sort.SliceStable(group, func(i, j int) bool {
		return miniWins[group[i].standing.TeamID] > miniWins[group[j].standing.TeamID]
	})
	for _, e := range group {
		if e.standing.TiebreakerApplied == "" {
			e.standing.TiebreakerApplied = string(TiebreakHeadToHead)
		}
	}
	return true
}
