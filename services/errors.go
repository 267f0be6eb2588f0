package services

import "errors"

// Orchestration-level errors. The engine package owns the core state
// machine/score/advancement kinds; these cover lookup failures and
// cross-record conflicts surfaced while orchestrating it.
var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrPoolNotFound    = errors.New("pool not found")
	ErrBracketNotFound = errors.New("bracket not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrRoundNotFound   = errors.New("bracket round not found")

	// ErrConcurrentModification - a stale write was rejected by the version
	// guard. The caller should re-fetch the latest state before retrying;
	// nothing is retried internally.
	ErrConcurrentModification = errors.New("record was modified concurrently")

	ErrNotABracketMatch = errors.New("match does not belong to a bracket")
	ErrNotEnoughTeams   = errors.New("a pool needs at least two teams")

	// ErrSeedingLocked - seed overrides are only allowed before a bracket
	// has been generated for the tournament.
	ErrSeedingLocked = errors.New("seeding is locked once a bracket exists")

	ErrChampionNotDecided = errors.New("bracket champion has not been decided yet")
	ErrNoTeamsRegistered  = errors.New("no teams registered for this tournament")
	ErrPoolsNotCompleted  = errors.New("all pool matches must finish before seeding a bracket")
)
