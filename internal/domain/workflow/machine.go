package workflow

import "context"

// Transition records a state change produced by Fire
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}

// StateMachine tracks the current state and validates transitions.
// Implementations are not safe for concurrent use; callers serialize access.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger and returns the transition taken
	Fire(ctx context.Context, trigger Trigger) (Transition, error)
}
