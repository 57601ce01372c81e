package session

import "testing"

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		answered bool
		current  bool
		want     QuestionStatus
	}{
		{false, false, StatusUnanswered},
		{false, true, StatusCurrent},
		{true, false, StatusAnswered},
		{true, true, StatusAnswered}, // answered wins over current
	}

	for _, tt := range tests {
		if got := DeriveStatus(tt.answered, tt.current); got != tt.want {
			t.Errorf("DeriveStatus(%v, %v) = %q, want %q", tt.answered, tt.current, got, tt.want)
		}
	}
}

func TestNavigatorClamping(t *testing.T) {
	n := newNavigator()
	const subject = "MATHEMATICS"
	const total = 3

	if got := n.Current(subject); got != 1 {
		t.Fatalf("Current on fresh subject = %d, want 1", got)
	}
	if n.Prev(subject) {
		t.Fatal("Prev at first question should report the boundary")
	}

	if !n.Next(subject, total) || n.Current(subject) != 2 {
		t.Fatalf("after Next, Current = %d, want 2", n.Current(subject))
	}
	n.Next(subject, total)
	if n.Next(subject, total) {
		t.Fatal("Next at last question should report the boundary")
	}
	if got := n.Current(subject); got != total {
		t.Fatalf("Current = %d after clamped Next, want %d", got, total)
	}
}

func TestNavigatorJump(t *testing.T) {
	n := newNavigator()
	const subject = "PHYSICS"

	if n.Jump(subject, 0, 5) || n.Jump(subject, 6, 5) {
		t.Fatal("Jump out of range should fail")
	}
	if !n.Jump(subject, 4, 5) || n.Current(subject) != 4 {
		t.Fatalf("Jump(4) landed on %d", n.Current(subject))
	}
}

func TestNavigatorPreservesPositionAcrossSubjects(t *testing.T) {
	n := newNavigator()

	n.Activate("MATHEMATICS")
	n.Jump("MATHEMATICS", 7, 10)

	n.Activate("ENGLISH LANGUAGE")
	if got := n.Current("ENGLISH LANGUAGE"); got != 1 {
		t.Fatalf("fresh subject starts at %d, want 1", got)
	}

	// Re-activating must not reset the stored index.
	n.Activate("MATHEMATICS")
	if got := n.Current("MATHEMATICS"); got != 7 {
		t.Fatalf("returning to subject lost position, got %d, want 7", got)
	}

	n.reset()
	if got := n.Current("MATHEMATICS"); got != 1 {
		t.Fatalf("Current after reset = %d, want 1", got)
	}
}
