package session

import "errors"

// Sentinel errors surfaced by the session controller. Handlers map these to
// typed API error codes; nothing here ever leaves state partially updated.
var (
	// Validation failures, raised before any network call.
	ErrEmptySubjects = errors.New("no subjects selected")
	ErrSubjectCount  = errors.New("subject selection violates exam rules")
	ErrYearRequired  = errors.New("exam year is required")

	// Operation-boundary failures (spec'd taxonomy).
	ErrBootstrap = errors.New("bootstrap failed")
	ErrFetch     = errors.New("question fetch failed")
	ErrSubmit    = errors.New("submission failed")

	// State guards.
	ErrNotInProgress  = errors.New("session is not in progress")
	ErrSubmitInFlight = errors.New("submission already in flight")
	ErrNotCompleted   = errors.New("session is not completed")
	ErrNoCorrections  = errors.New("no correction data available")
	ErrUnknownSubject = errors.New("subject is not part of this session")
	ErrNoQuestions    = errors.New("no questions available for subject")
)
