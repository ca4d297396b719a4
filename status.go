package terminal

import "fmt"

// PaymentStatus is the user-visible phase of a single payment attempt.
// The lifecycle is linear with no branching back:
//
//	idle → authorizing → verifying → settling → complete
//
// error is reachable from any non-terminal state, and an errored attempt
// may be reset to idle for a fresh try. The status is scoped to one
// in-flight attempt and never persisted.
type PaymentStatus string

const (
	StatusIdle        PaymentStatus = "idle"
	StatusAuthorizing PaymentStatus = "authorizing"
	StatusVerifying   PaymentStatus = "verifying"
	StatusSettling    PaymentStatus = "settling"
	StatusComplete    PaymentStatus = "complete"
	StatusError       PaymentStatus = "error"
)

// allowedTransitions encodes the linear state machine. Terminal states are
// complete (absorbing) and error (resettable to idle only).
var allowedTransitions = map[PaymentStatus][]PaymentStatus{
	StatusIdle:        {StatusAuthorizing},
	StatusAuthorizing: {StatusVerifying, StatusError},
	StatusVerifying:   {StatusSettling, StatusError},
	StatusSettling:    {StatusComplete, StatusError},
	StatusComplete:    {},
	StatusError:       {StatusIdle},
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether s ends the linear sequence.
func (s PaymentStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// CanTransition reports whether the machine may move from s to next.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// StatusTracker validates payment status transitions at each assignment,
// catching out-of-order updates instead of silently accepting them.
// The zero value starts at idle.
type StatusTracker struct {
	current PaymentStatus
}

// NewStatusTracker returns a tracker positioned at idle.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{current: StatusIdle}
}

// Current returns the tracker's current status.
func (t *StatusTracker) Current() PaymentStatus {
	if t.current == "" {
		return StatusIdle
	}
	return t.current
}

// Transition moves the tracker to next, failing on any move the state
// machine does not allow.
func (t *StatusTracker) Transition(next PaymentStatus) error {
	cur := t.Current()
	if !next.Valid() {
		return fmt.Errorf("unknown payment status %q", next)
	}
	if !cur.CanTransition(next) {
		return fmt.Errorf("invalid payment status transition %s -> %s", cur, next)
	}
	t.current = next
	return nil
}
