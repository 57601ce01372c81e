package model

// SubjectScore is the backend-computed score for one subject (out of 100).
type SubjectScore struct {
	Subject string `json:"examSubject"`
	Score   int    `json:"score"`
}

// Correction is the per-question correctness breakdown returned on
// finalization. Read-only; it drives review-mode coloring.
type Correction struct {
	QuestionID    string `json:"questionId"`
	CorrectAnswer string `json:"correctAnswer"`
	StudentAnswer string `json:"studentAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// ExamResult is the finalization response for a session.
type ExamResult struct {
	SessionID     string         `json:"sessionId"`
	SubjectScores []SubjectScore `json:"subjectScores"`
	TotalScore    int            `json:"totalScore"`
	IsCompleted   bool           `json:"isCompleted"`
	TimeSpent     string         `json:"timeSpent"`
	Corrections   []Correction   `json:"questionDetails,omitempty"`
}

// MaxScore is the combined maximum for the session's subject set
// (each subject is scored out of 100).
func (r *ExamResult) MaxScore() int {
	return len(r.SubjectScores) * 100
}

// Percentage is the rounded share of the combined maximum achieved.
func (r *ExamResult) Percentage() int {
	max := r.MaxScore()
	if max == 0 {
		return 0
	}
	return int(float64(r.TotalScore)/float64(max)*100 + 0.5)
}

// Profile is the minimal identity returned by the exam API's GetMe query.
// Used only for greeting and score-sheet labeling, never for gating.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username,omitempty"`
}
