package model

// Question is a single multiple-choice question as served by the exam API.
// Questions are owned by the session's question cache and never mutated
// after fetch; the option position implies the answer code (a..e).
type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// AnswerEntry is one serialized ledger entry, shaped for the FinishExam
// mutation. Answer codes are always lower-case single letters.
type AnswerEntry struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}
