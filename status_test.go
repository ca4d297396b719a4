package terminal

import "testing"

func TestPaymentStatusCanTransition(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{StatusIdle, StatusAuthorizing, true},
		{StatusAuthorizing, StatusVerifying, true},
		{StatusVerifying, StatusSettling, true},
		{StatusSettling, StatusComplete, true},
		{StatusAuthorizing, StatusError, true},
		{StatusVerifying, StatusError, true},
		{StatusSettling, StatusError, true},
		{StatusError, StatusIdle, true},

		// no skipping ahead
		{StatusIdle, StatusVerifying, false},
		{StatusIdle, StatusSettling, false},
		{StatusAuthorizing, StatusSettling, false},
		{StatusAuthorizing, StatusComplete, false},
		// no going back
		{StatusVerifying, StatusAuthorizing, false},
		{StatusSettling, StatusVerifying, false},
		// complete is absorbing
		{StatusComplete, StatusIdle, false},
		{StatusComplete, StatusError, false},
		// error resets to idle only
		{StatusError, StatusAuthorizing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStatusTrackerHappyPath(t *testing.T) {
	tracker := NewStatusTracker()
	sequence := []PaymentStatus{StatusAuthorizing, StatusVerifying, StatusSettling, StatusComplete}

	for _, next := range sequence {
		if err := tracker.Transition(next); err != nil {
			t.Fatalf("Transition(%s) failed: %v", next, err)
		}
		if tracker.Current() != next {
			t.Fatalf("Current() = %s after transition to %s", tracker.Current(), next)
		}
	}
}

func TestStatusTrackerRejectsInvalidMoves(t *testing.T) {
	tracker := NewStatusTracker()
	if err := tracker.Transition(StatusSettling); err == nil {
		t.Error("expected error transitioning idle -> settling")
	}
	if tracker.Current() != StatusIdle {
		t.Errorf("failed transition moved tracker to %s", tracker.Current())
	}

	if err := tracker.Transition("confirming"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestStatusTrackerErrorReset(t *testing.T) {
	tracker := NewStatusTracker()
	if err := tracker.Transition(StatusAuthorizing); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Transition(StatusError); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Transition(StatusIdle); err != nil {
		t.Fatalf("error -> idle reset failed: %v", err)
	}
	if err := tracker.Transition(StatusAuthorizing); err != nil {
		t.Fatalf("reset tracker should allow a fresh attempt: %v", err)
	}
}

func TestStatusTrackerZeroValue(t *testing.T) {
	var tracker StatusTracker
	if tracker.Current() != StatusIdle {
		t.Errorf("zero tracker Current() = %s, want idle", tracker.Current())
	}
	if err := tracker.Transition(StatusAuthorizing); err != nil {
		t.Errorf("zero tracker should accept idle -> authorizing: %v", err)
	}
}
