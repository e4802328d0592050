package applications

import "testing"

func TestCanTransitionForwardPath(t *testing.T) {
	path := []Status{
		StatusPending,
		StatusShortlisted,
		StatusTestScheduled,
		StatusInterviewScheduled,
		StatusWaitingForResult,
		StatusAccepted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestRejectionReachableFromEveryNonTerminalState(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusShortlisted, StatusTestScheduled, StatusInterviewScheduled, StatusWaitingForResult} {
		if !CanTransition(s, StatusRejected) {
			t.Fatalf("expected %s -> rejected to be allowed", s)
		}
	}
}

func TestCanTransitionRejectsIllegalJumps(t *testing.T) {
	cases := []struct{ old, new Status }{
		{StatusPending, StatusAccepted},
		{StatusPending, StatusWaitingForResult},
		{StatusPending, StatusInterviewScheduled},
		{StatusShortlisted, StatusAccepted},
		{StatusAccepted, StatusRejected},
		{StatusRejected, StatusPending},
		{StatusShortlisted, StatusShortlisted},
	}
	for _, tc := range cases {
		if CanTransition(tc.old, tc.new) {
			t.Fatalf("expected %s -> %s to be rejected", tc.old, tc.new)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if !StatusAccepted.IsTerminal() || !StatusRejected.IsTerminal() {
		t.Fatalf("accepted and rejected must be terminal")
	}
	if StatusPending.IsTerminal() {
		t.Fatalf("pending must not be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseStatus("shortlisted"); !ok {
		t.Fatalf("shortlisted should parse")
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatalf("unknown status must not parse")
	}
}
