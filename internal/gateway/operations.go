package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/preptly/cbt-gateway/internal/model"
)

const startExamQuery = `
mutation StartJambExam($subjects: [String!]!, $examYear: String, $isCompetition: Boolean) {
  startJambExam(subjects: $subjects, examYear: $examYear, isCompetition: $isCompetition) {
    id
    subjects
    remainingTime
  }
}`

const fetchQuestionsQuery = `
query FetchJambSubjectQuestions($sessionId: Int!) {
  fetchJambSubjectQuestions(sessionId: $sessionId) {
    subject
    questions {
      id
      question
      options
      imageUrl
    }
  }
}`

const finishExamQuery = `
mutation FinishJambExam($sessionId: Int!, $answers: [AnswerInput!]!, $questionIds: [String!]!) {
  finishJambExam(sessionId: $sessionId, answers: $answers, questionIds: $questionIds) {
    sessionId
    subjectScores { examSubject score }
    totalScore
    isCompleted
    timeSpent
    questionDetails {
      questionId
      correctAnswer
      studentAnswer
      isCorrect
    }
  }
}`

const getMeQuery = `
query GetMe {
  me {
    firstName
    lastName
  }
}`

// StartedSession is the bootstrap payload for a new exam session.
// RemainingTime is reported by the server but deliberately ignored by the
// session controller — every attempt starts with the full local clock.
type StartedSession struct {
	ID            string
	Subjects      []string
	RemainingTime string
}

// SubjectQuestions groups the question list fetched for one subject.
type SubjectQuestions struct {
	Subject   string           `json:"subject"`
	Questions []model.Question `json:"questions"`
}

// StartExam creates a new exam session upstream.
func (c *Client) StartExam(ctx context.Context, ts TokenSource, subjects []string, year string, competition bool) (*StartedSession, error) {
	var data struct {
		StartJambExam struct {
			ID            int64    `json:"id"`
			Subjects      []string `json:"subjects"`
			RemainingTime string   `json:"remainingTime"`
		} `json:"startJambExam"`
	}

	vars := map[string]interface{}{
		"subjects":      subjects,
		"examYear":      year,
		"isCompetition": competition,
	}
	if err := c.do(ctx, ts, startExamQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}

	return &StartedSession{
		ID:            strconv.FormatInt(data.StartJambExam.ID, 10),
		Subjects:      data.StartJambExam.Subjects,
		RemainingTime: data.StartJambExam.RemainingTime,
	}, nil
}

// FetchSubjectQuestions returns the per-subject question lists for a session.
func (c *Client) FetchSubjectQuestions(ctx context.Context, ts TokenSource, sessionID string) ([]SubjectQuestions, error) {
	id, err := strconv.Atoi(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	var data struct {
		FetchJambSubjectQuestions []SubjectQuestions `json:"fetchJambSubjectQuestions"`
	}
	vars := map[string]interface{}{"sessionId": id}
	if err := c.do(ctx, ts, fetchQuestionsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if data.FetchJambSubjectQuestions == nil {
		return nil, fmt.Errorf("fetch questions: empty response")
	}
	return data.FetchJambSubjectQuestions, nil
}

// FinishExam submits the full answer ledger plus the full question-id list
// and returns the computed result. Answer codes and question ids are
// lower-cased on the wire.
func (c *Client) FinishExam(ctx context.Context, ts TokenSource, sessionID string, answers []model.AnswerEntry, questionIDs []string) (*model.ExamResult, error) {
	id, err := strconv.Atoi(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	wireAnswers := make([]map[string]string, 0, len(answers))
	for _, a := range answers {
		wireAnswers = append(wireAnswers, map[string]string{
			"questionId": a.QuestionID,
			"answer":     strings.ToLower(a.Answer),
		})
	}
	wireIDs := make([]string, 0, len(questionIDs))
	for _, qid := range questionIDs {
		wireIDs = append(wireIDs, strings.ToLower(qid))
	}

	var data struct {
		FinishJambExam struct {
			SessionID     int64                `json:"sessionId"`
			SubjectScores []model.SubjectScore `json:"subjectScores"`
			TotalScore    int                  `json:"totalScore"`
			IsCompleted   bool                 `json:"isCompleted"`
			TimeSpent     string               `json:"timeSpent"`
			Details       []model.Correction   `json:"questionDetails"`
		} `json:"finishJambExam"`
	}
	vars := map[string]interface{}{
		"sessionId":   id,
		"answers":     wireAnswers,
		"questionIds": wireIDs,
	}
	if err := c.do(ctx, ts, finishExamQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("finish exam: %w", err)
	}

	return &model.ExamResult{
		SessionID:     strconv.FormatInt(data.FinishJambExam.SessionID, 10),
		SubjectScores: data.FinishJambExam.SubjectScores,
		TotalScore:    data.FinishJambExam.TotalScore,
		IsCompleted:   data.FinishJambExam.IsCompleted,
		TimeSpent:     data.FinishJambExam.TimeSpent,
		Corrections:   data.FinishJambExam.Details,
	}, nil
}

// GetMe fetches the caller's profile for greeting/score-sheet labeling.
func (c *Client) GetMe(ctx context.Context, ts TokenSource) (*model.Profile, error) {
	var data struct {
		Me model.Profile `json:"me"`
	}
	if err := c.do(ctx, ts, getMeQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &data.Me, nil
}
