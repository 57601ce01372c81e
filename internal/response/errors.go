package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrBootstrapFailed ErrCode = "BOOTSTRAP_FAILED"
	ErrQuestionsFetch  ErrCode = "QUESTIONS_FETCH_FAILED"
	ErrSubmission      ErrCode = "SUBMISSION_FAILED"
	ErrNoSession       ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionState    ErrCode = "INVALID_SESSION_STATE"
	ErrSubmitInFlight  ErrCode = "SUBMISSION_IN_FLIGHT"
	ErrNoSubjects      ErrCode = "NO_SUBJECTS_SELECTED"
	ErrSubjectLimit    ErrCode = "SUBJECT_LIMIT"
	ErrUnknownSubject  ErrCode = "UNKNOWN_SUBJECT"
	ErrNoQuestions     ErrCode = "NO_QUESTIONS"

	// ─── Tools ─────────────────────────────────────────────────────────
	ErrBadExpression ErrCode = "INVALID_EXPRESSION"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required. Please log in."
	case ErrTokenInvalid:
		return "Authentication token is invalid. Please log in again."
	case ErrTokenExpired:
		return "Your session has expired. Please log in again."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrBootstrapFailed:
		return "Could not start the exam. Please try again from subject selection."
	case ErrQuestionsFetch:
		return "Could not load questions for all subjects. Please try again."
	case ErrSubmission:
		return "Could not submit the exam. Your answers are safe — please try again."
	case ErrNoSession:
		return "No exam session in progress."
	case ErrSessionState:
		return "This action is not allowed in the current exam state."
	case ErrSubmitInFlight:
		return "A submission is already in progress."
	case ErrNoSubjects:
		return "Select at least one subject to start."
	case ErrSubjectLimit:
		return "The selected subjects do not satisfy the exam rules."
	case ErrUnknownSubject:
		return "The requested subject is not part of this session."
	case ErrNoQuestions:
		return "No questions available for this subject."
	case ErrBadExpression:
		return "The expression could not be evaluated."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
