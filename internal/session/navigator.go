package session

// QuestionStatus is the derived visual/logical state of a question slot.
// Exactly three mutually exclusive states; answered wins over current,
// current wins over unanswered.
type QuestionStatus string

const (
	StatusAnswered   QuestionStatus = "answered"
	StatusCurrent    QuestionStatus = "current"
	StatusUnanswered QuestionStatus = "unanswered"
)

// DeriveStatus computes the tri-state for one question slot. It is a pure
// function of (ledger membership, current index) and is recomputed on every
// snapshot, never cached.
func DeriveStatus(answered, current bool) QuestionStatus {
	switch {
	case answered:
		return StatusAnswered
	case current:
		return StatusCurrent
	default:
		return StatusUnanswered
	}
}

// Navigator tracks, per subject, which 1-based question index is active.
// Indexes default to 1 the first time a subject becomes active and are
// preserved across subject switches.
type Navigator struct {
	current map[string]int
}

func newNavigator() *Navigator {
	return &Navigator{current: make(map[string]int)}
}

// Current returns the active index for a subject (1 when never visited).
func (n *Navigator) Current(subject string) int {
	if idx, ok := n.current[subject]; ok {
		return idx
	}
	return 1
}

// Activate ensures the subject has an index without resetting a previous
// one; switching away and back restores the prior position.
func (n *Navigator) Activate(subject string) {
	if _, ok := n.current[subject]; !ok {
		n.current[subject] = 1
	}
}

// Next steps forward, clamped at the last question. Returns false at the
// boundary (the UI renders the button disabled there).
func (n *Navigator) Next(subject string, total int) bool {
	idx := n.Current(subject)
	if idx >= total {
		return false
	}
	n.current[subject] = idx + 1
	return true
}

// Prev steps backward, clamped at the first question.
func (n *Navigator) Prev(subject string) bool {
	idx := n.Current(subject)
	if idx <= 1 {
		return false
	}
	n.current[subject] = idx - 1
	return true
}

// Jump navigates directly to any valid 1-based index for the subject.
func (n *Navigator) Jump(subject string, index, total int) bool {
	if index < 1 || index > total {
		return false
	}
	n.current[subject] = index
	return true
}

func (n *Navigator) reset() {
	n.current = make(map[string]int)
}
