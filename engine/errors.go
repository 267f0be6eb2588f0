package engine

import "errors"

// Core error kinds. Services wrap these with context and the HTTP layer
// maps them to status codes; nothing here is retried internally.
var (
	// ErrInvalidTransition - the attempted state change violates the match
	// state machine, e.g. calling a match with an unresolved slot.
	ErrInvalidTransition = errors.New("invalid match state transition")

	// ErrInvalidScore - submitted game score violates the match format rules.
	ErrInvalidScore = errors.New("score violates match format rules")

	// ErrIllegalStateTransition - mutation attempted on a terminal match.
	ErrIllegalStateTransition = errors.New("match is in a terminal state")

	// ErrAdvancementLocked - undo attempted after the downstream match
	// already progressed past upcoming.
	ErrAdvancementLocked = errors.New("downstream match has already progressed")

	// ErrUnresolvedTie - internal invariant violation. The mandatory seed
	// fallback makes standings a strict total order, so this should never
	// surface from standings calculation; it guards seeding inputs.
	ErrUnresolvedTie = errors.New("standings contain an unresolved tie")
)
