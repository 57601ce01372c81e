package model

// StartQuizRequest is the payload for starting a new exam session.
type StartQuizRequest struct {
	Subjects    []string `json:"subjects" binding:"required,min=1,dive,min=1"`
	Year        string   `json:"year" binding:"omitempty,len=4"`
	Competition bool     `json:"competition"`
}

// AnswerRequest selects an option for a question of the active subject.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Option     string `json:"option" binding:"required"`
}

// JumpRequest navigates directly to a 1-based question index.
type JumpRequest struct {
	Index int `json:"index" binding:"required,min=1"`
}

// SubjectRequest switches the active subject.
type SubjectRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// KeyRequest routes a keyboard shortcut through the navigator.
type KeyRequest struct {
	Key string `json:"key" binding:"required,len=1"`
}

// DarkModeRequest updates the display preference.
type DarkModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// CalculateRequest evaluates a calculator expression.
type CalculateRequest struct {
	Expression string `json:"expression" binding:"required,max=256"`
}
