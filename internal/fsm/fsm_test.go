package fsm

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusRequested, StatusQuoted},
		{StatusQuoted, StatusAccepted},
		{StatusQuoted, StatusRejected},
		{StatusAccepted, StatusCompleted},
		{StatusCompleted, StatusQuoted},
		{StatusCompleted, StatusRequested},
		{StatusRejected, StatusQuoted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{StatusRequested, StatusAccepted},
		{StatusRequested, StatusCompleted},
		{StatusQuoted, StatusCompleted},
		{StatusAccepted, StatusQuoted},
		{StatusAccepted, StatusRejected},
		{StatusRejected, StatusAccepted},
		{StatusCompleted, StatusAccepted},
		{"unknown", StatusQuoted},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestCanTransitionSameStatus(t *testing.T) {
	for _, status := range []string{StatusRequested, StatusQuoted, StatusAccepted, StatusRejected, StatusCompleted} {
		if !CanTransition(status, status) {
			t.Errorf("expected %s -> %s to be a no-op transition", status, status)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusRejected) || !IsTerminal(StatusCompleted) {
		t.Error("rejected and completed should be terminal")
	}
	for _, status := range []string{StatusRequested, StatusQuoted, StatusAccepted} {
		if IsTerminal(status) {
			t.Errorf("%s should not be terminal", status)
		}
	}
}
