package engine

import (
	"errors"
	"fmt"
	"math"
)

// GeneratedMatch is one slot of a generated schedule before persistence.
// The service layer creates the real match rows and links the forward
// pointers by (round, position); the generator only decides structure.
type GeneratedMatch struct {
	Round    int
	Position int
	Team1ID  *int
	Team2ID  *int
	Bye      bool

	// ThirdPlace marks the consolation match appended to a bracket's last
	// round; its winner advances nowhere and never becomes champion.
	ThirdPlace bool
}

// GenerateSingleElimination lays out a full elimination tree for the given
// teams in seed order (index 0 is the top seed). The bracket is padded to
// the next power of two; pad slots become byes placed against the top
// seeds, per the classic 1-vs-lowest pairing. Later rounds are emitted with
// empty slots for the advancer to fill.
//
// With thirdPlace set, an extra match at (finalRound, 2) receives the
// semifinal losers.
func GenerateSingleElimination(teamIDs []int, thirdPlace bool) ([]GeneratedMatch, int, error) {
	n := len(teamIDs)
	if n < 2 {
		return nil, 0, fmt.Errorf("not enough teams for an elimination bracket (found %d, min 2)", n)
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	// slots[i] holds the team meeting slots[i+1] in round 1; 0 marks a bye.
	order := seedOrder(bracketSize)
	slots := make([]int, bracketSize)
	for i, seed := range order {
		if seed <= n {
			slots[i] = teamIDs[seed-1]
		}
	}

	matches := make([]GeneratedMatch, 0, bracketSize-1)
	for i := 0; i < bracketSize; i += 2 {
		gm := GeneratedMatch{Round: 1, Position: i/2 + 1}
		if slots[i] != 0 {
			id := slots[i]
			gm.Team1ID = &id
		}
		if slots[i+1] != 0 {
			id := slots[i+1]
			gm.Team2ID = &id
		}
		if gm.Team1ID == nil && gm.Team2ID == nil {
			return nil, 0, errors.New("bracket seeding produced an empty pairing")
		}
		if gm.Team1ID == nil || gm.Team2ID == nil {
			gm.Bye = true
		}
		matches = append(matches, gm)
	}

	for r := 2; r <= numRounds; r++ {
		count := bracketSize >> uint(r)
		for p := 1; p <= count; p++ {
			matches = append(matches, GeneratedMatch{Round: r, Position: p})
		}
	}

	if thirdPlace && numRounds >= 2 {
		matches = append(matches, GeneratedMatch{Round: numRounds, Position: 2, ThirdPlace: true})
	}

	return matches, numRounds, nil
}

// seedOrder returns the seed placed at each bracket slot so that seeds 1
// and 2 can only meet in the final: {1,2} -> {1,4,2,3} -> {1,8,4,5,2,7,3,6}.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		mirror := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}

// GenerateRoundRobin pairs every team with every other team exactly once,
// in the order the teams were listed.
func GenerateRoundRobin(teamIDs []int) ([]GeneratedMatch, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("not enough teams for a round robin (found %d, min 2)", len(teamIDs))
	}
	matches := make([]GeneratedMatch, 0, len(teamIDs)*(len(teamIDs)-1)/2)
	position := 0
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			position++
			t1, t2 := teamIDs[i], teamIDs[j]
			matches = append(matches, GeneratedMatch{
				Round:    1,
				Position: position,
				Team1ID:  &t1,
				Team2ID:  &t2,
			})
		}
	}
	return matches, nil
}
