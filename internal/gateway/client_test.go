package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/preptly/cbt-gateway/internal/model"
)

type capturedRequest struct {
	auth      string
	query     string
	variables map[string]interface{}
}

// stubExamAPI records the last request and plays back a scripted body.
func stubExamAPI(t *testing.T, respond func(query string) string) (*Client, *capturedRequest, func()) {
	t.Helper()
	captured := &capturedRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")

		var req struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		captured.query = req.Query
		captured.variables = req.Variables

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(respond(req.Query)))
	}))

	client := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	return client, captured, srv.Close
}

func TestStartExam(t *testing.T) {
	client, captured, done := stubExamAPI(t, func(string) string {
		return `{"data":{"startJambExam":{"id":42,"subjects":["MATHEMATICS","ENGLISH LANGUAGE"],"remainingTime":"01:30:00"}}}`
	})
	defer done()

	started, err := client.StartExam(context.Background(), StaticToken("tok-1"),
		[]string{"MATHEMATICS", "ENGLISH LANGUAGE"}, "2023", true)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}

	if captured.auth != "Bearer tok-1" {
		t.Fatalf("auth header = %q, want Bearer tok-1", captured.auth)
	}
	if !strings.Contains(captured.query, "StartJambExam") {
		t.Fatalf("wrong operation sent: %s", captured.query)
	}
	if captured.variables["isCompetition"] != true {
		t.Fatalf("isCompetition = %v, want true", captured.variables["isCompetition"])
	}

	// The numeric upstream id becomes a string session id.
	if started.ID != "42" {
		t.Fatalf("session id = %q, want 42", started.ID)
	}
	if len(started.Subjects) != 2 {
		t.Fatalf("subjects = %v", started.Subjects)
	}
}

func TestStartExamNoTokenSendsNoHeader(t *testing.T) {
	client, captured, done := stubExamAPI(t, func(string) string {
		return `{"data":{"startJambExam":{"id":1,"subjects":["PHYSICS"],"remainingTime":""}}}`
	})
	defer done()

	if _, err := client.StartExam(context.Background(), StaticToken(""), []string{"PHYSICS"}, "", false); err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if captured.auth != "" {
		t.Fatalf("empty token still produced header %q", captured.auth)
	}
}

func TestFetchSubjectQuestions(t *testing.T) {
	client, captured, done := stubExamAPI(t, func(string) string {
		return `{"data":{"fetchJambSubjectQuestions":[
			{"subject":"MATHEMATICS","questions":[
				{"id":"m1","question":"2+2?","options":["3","4"],"imageUrl":"http://img/m1.png"}
			]}
		]}}`
	})
	defer done()

	lists, err := client.FetchSubjectQuestions(context.Background(), StaticToken("t"), "42")
	if err != nil {
		t.Fatalf("FetchSubjectQuestions: %v", err)
	}

	// The string session id goes out as an integer variable.
	if got := captured.variables["sessionId"]; got != float64(42) {
		t.Fatalf("sessionId variable = %v (%T), want 42", got, got)
	}

	if len(lists) != 1 || lists[0].Subject != "MATHEMATICS" {
		t.Fatalf("lists = %+v", lists)
	}
	q := lists[0].Questions[0]
	if q.ID != "m1" || q.Text != "2+2?" || q.ImageURL != "http://img/m1.png" {
		t.Fatalf("question mapping wrong: %+v", q)
	}
}

func TestFetchSubjectQuestionsRejectsBadSessionID(t *testing.T) {
	client := NewClient("http://unreachable.invalid", time.Second, zerolog.Nop())
	if _, err := client.FetchSubjectQuestions(context.Background(), StaticToken("t"), "not-a-number"); err == nil {
		t.Fatal("expected error for non-numeric session id")
	}
}

func TestFetchSubjectQuestionsEmptyResponse(t *testing.T) {
	client, _, done := stubExamAPI(t, func(string) string {
		return `{"data":{"fetchJambSubjectQuestions":null}}`
	})
	defer done()

	if _, err := client.FetchSubjectQuestions(context.Background(), StaticToken("t"), "1"); err == nil {
		t.Fatal("null payload must be an error, not an empty slice")
	}
}

func TestFinishExamLowercasesWirePayload(t *testing.T) {
	client, captured, done := stubExamAPI(t, func(string) string {
		return `{"data":{"finishJambExam":{
			"sessionId":42,
			"subjectScores":[{"examSubject":"MATHEMATICS","score":90}],
			"totalScore":90,
			"isCompleted":true,
			"timeSpent":"00:10:00",
			"questionDetails":[{"questionId":"m1","correctAnswer":"b","studentAnswer":"b","isCorrect":true}]
		}}}`
	})
	defer done()

	answers := []model.AnswerEntry{{QuestionID: "M1", Answer: "B"}}
	result, err := client.FinishExam(context.Background(), StaticToken("t"), "42", answers, []string{"M1", "M2"})
	if err != nil {
		t.Fatalf("FinishExam: %v", err)
	}

	wireAnswers := captured.variables["answers"].([]interface{})
	first := wireAnswers[0].(map[string]interface{})
	if first["answer"] != "b" {
		t.Fatalf("answer on the wire = %v, want b", first["answer"])
	}
	wireIDs := captured.variables["questionIds"].([]interface{})
	if wireIDs[0] != "m1" || wireIDs[1] != "m2" {
		t.Fatalf("question ids on the wire = %v, want lower-case", wireIDs)
	}

	if result.SessionID != "42" || !result.IsCompleted || result.TotalScore != 90 {
		t.Fatalf("result mapping wrong: %+v", result)
	}
	if len(result.Corrections) != 1 || result.Corrections[0].QuestionID != "m1" {
		t.Fatalf("corrections mapping wrong: %+v", result.Corrections)
	}
}

func TestGraphQLErrorBecomesAPIError(t *testing.T) {
	client, _, done := stubExamAPI(t, func(string) string {
		return `{"errors":[{"message":"session already finished"}]}`
	})
	defer done()

	_, err := client.FinishExam(context.Background(), StaticToken("t"), "42", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T not an APIError", err)
	}
	if apiErr.Message != "session already finished" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestNon200StatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	if _, err := client.GetMe(context.Background(), StaticToken("t")); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestGetMe(t *testing.T) {
	client, captured, done := stubExamAPI(t, func(string) string {
		return `{"data":{"me":{"firstName":"Ada","lastName":"Obi"}}}`
	})
	defer done()

	profile, err := client.GetMe(context.Background(), StaticToken("t"))
	if err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if !strings.Contains(captured.query, "GetMe") {
		t.Fatalf("wrong operation sent: %s", captured.query)
	}
	if profile.FirstName != "Ada" || profile.LastName != "Obi" {
		t.Fatalf("profile = %+v", profile)
	}
}
