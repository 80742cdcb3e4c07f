package domain

import "testing"

func TestCanTransition_PendingReachesAllTerminalStates(t *testing.T) {
	targets := []AssignmentStatus{StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled}
	for _, to := range targets {
		if !CanTransition(StatusPending, to) {
			t.Fatalf("expected pending -> %s to be allowed", to)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	terminals := []AssignmentStatus{StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled}
	targets := []AssignmentStatus{StatusPending, StatusAccepted, StatusDeclined, StatusExpired, StatusCancelled}

	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range targets {
			if CanTransition(from, to) {
				t.Fatalf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestCanTransition_PendingToPendingRejected(t *testing.T) {
	if CanTransition(StatusPending, StatusPending) {
		t.Fatal("expected pending -> pending to be rejected")
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(StatusDeclined) {
		t.Fatal("declined should be a valid status")
	}
	if IsValidStatus(AssignmentStatus("snoozed")) {
		t.Fatal("snoozed should not be a valid status")
	}
}
