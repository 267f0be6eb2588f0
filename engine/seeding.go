package engine

import (
	"fmt"

	"github.com/courtside/tournament-engine/models"
)

// SeedingMethod selects how per-pool standings combine into one bracket
// seed order.
type SeedingMethod string

const (
	// SeedCrossPool takes all pool winners first (in pool order), then all
	// runners-up, and so on.
	SeedCrossPool SeedingMethod = "cross_pool"

	// SeedSnake alternates pool order per rank row: winners left to right,
	// runners-up right to left.
	SeedSnake SeedingMethod = "snake"
)

// CombinePoolStandings flattens ranked pool standings into a bracket seed
// order (strongest first). A pure function of the standings lists; pools of
// unequal size are allowed, exhausted pools are skipped.
//
// Each input list must already be a strict total order. Duplicate or
// missing ranks indicate the calculator's seed fallback was bypassed and
// fail with ErrUnresolvedTie.
func CombinePoolStandings(pools [][]models.PoolStanding, method SeedingMethod) ([]int, error) {
	maxLen := 0
	for i, standings := range pools {
		for j, s := range standings {
			if s.Rank != j+1 {
				return nil, fmt.Errorf("%w: pool %d rank %d at position %d", ErrUnresolvedTie, i+1, s.Rank, j+1)
			}
		}
		if len(standings) > maxLen {
			maxLen = len(standings)
		}
	}

	seedOrder := make([]int, 0)
	for row := 0; row < maxLen; row++ {
		switch method {
		case SeedSnake:
			if row%2 == 1 {
				for i := len(pools) - 1; i >= 0; i-- {
					if row < len(pools[i]) {
						seedOrder = append(seedOrder, pools[i][row].TeamID)
					}
				}
				continue
			}
			fallthrough
		case SeedCrossPool:
			for i := range pools {
				if row < len(pools[i]) {
					seedOrder = append(seedOrder, pools[i][row].TeamID)
				}
			}
		default:
			return nil, fmt.Errorf("unsupported seeding method %q", method)
		}
	}
	return seedOrder, nil
}
