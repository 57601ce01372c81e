package session

import (
	"strings"

	"github.com/preptly/cbt-gateway/internal/model"
)

// Verdict is the review-mode outcome for one option. Exactly three values:
// the correct option, an incorrectly-selected option, and everything else.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect-selected"
	VerdictNeutral   Verdict = "neutral"
)

// OptionView is one renderable option of the current question.
type OptionView struct {
	Code     string  `json:"code"`
	Text     string  `json:"text"`
	Selected bool    `json:"selected"`
	Verdict  Verdict `json:"verdict,omitempty"` // review mode only
}

// QuestionView is the current question of the active subject.
type QuestionView struct {
	Number   int          `json:"number"`
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	ImageURL string       `json:"image_url,omitempty"`
	Options  []OptionView `json:"options"`
}

// GridCell is one slot of the question-number grid.
type GridCell struct {
	Number int            `json:"number"`
	Status QuestionStatus `json:"status"`
}

// Snapshot is a complete render-ready view of the session. Everything in
// it is derived on the spot from the ledger, the navigator and the clock;
// the snapshot itself holds no authoritative state.
type Snapshot struct {
	Status        Status            `json:"status"`
	Kind          string            `json:"kind"`
	SessionID     string            `json:"session_id,omitempty"`
	Clock         string            `json:"clock"`
	Subjects      []string          `json:"subjects"`
	ActiveSubject string            `json:"active_subject,omitempty"`
	Question      *QuestionView     `json:"question,omitempty"`
	NoQuestions   bool              `json:"no_questions,omitempty"`
	Grid          []GridCell        `json:"grid"`
	CanPrev       bool              `json:"can_prev"`
	CanNext       bool              `json:"can_next"`
	Answered      int               `json:"answered"`
	Total         int               `json:"total_questions"`
	Error         string            `json:"error,omitempty"`
	Result        *model.ExamResult `json:"result,omitempty"`
}

// Snapshot derives the current view. Safe to call in any state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Status:        c.status,
		Kind:          c.selection.Kind.String(),
		SessionID:     c.sessionID,
		Clock:         ClockZero,
		Subjects:      append([]string(nil), c.subjects...),
		ActiveSubject: c.active,
		Answered:      c.ledger.Len(),
		Error:         c.lastErr,
	}
	if c.clock != nil {
		snap.Clock = c.clock.Remaining()
	}
	for _, subject := range c.subjects {
		snap.Total += len(c.questions[subject])
	}
	if c.status == StatusCompleted || c.status == StatusReviewing {
		snap.Result = c.result
	}

	qs := c.questions[c.active]
	if c.active == "" {
		return snap
	}
	if len(qs) == 0 {
		// Recoverable: the subject stays selectable, the view reports
		// "no questions available" instead of crashing.
		snap.NoQuestions = true
		return snap
	}

	idx := c.nav.Current(c.active)
	if idx > len(qs) {
		idx = len(qs)
	}
	snap.CanPrev = idx > 1
	snap.CanNext = idx < len(qs)
	snap.Grid = c.buildGridLocked(qs, idx)
	snap.Question = c.buildQuestionLocked(&qs[idx-1], idx)
	return snap
}

// buildGridLocked recomputes the tri-state for every question slot of the
// active subject. In review mode "answered" comes from the correction data
// (the live ledger was cleared at finalization).
func (c *Controller) buildGridLocked(qs []model.Question, current int) []GridCell {
	grid := make([]GridCell, len(qs))
	for i := range qs {
		answered := false
		if c.status == StatusReviewing {
			if cr, ok := c.corrections[strings.ToLower(qs[i].ID)]; ok {
				answered = strings.TrimSpace(cr.StudentAnswer) != ""
			}
		} else {
			answered = c.ledger.Has(c.active, qs[i].ID)
		}
		grid[i] = GridCell{
			Number: i + 1,
			Status: DeriveStatus(answered, i+1 == current),
		}
	}
	return grid
}

func (c *Controller) buildQuestionLocked(q *model.Question, number int) *QuestionView {
	view := &QuestionView{
		Number:   number,
		ID:       q.ID,
		Text:     q.Text,
		ImageURL: q.ImageURL,
		Options:  make([]OptionView, 0, len(q.Options)),
	}

	reviewing := c.status == StatusReviewing
	var correction *model.Correction
	if reviewing {
		if cr, ok := c.corrections[strings.ToLower(q.ID)]; ok {
			correction = &cr
		}
	}
	selectedCode, _ := c.ledger.Answer(c.active, q.ID)

	for i, text := range q.Options {
		code := CodeForIndex(i)
		opt := OptionView{Code: code, Text: text}

		if reviewing && correction != nil {
			chosen := answerMatches(correction.StudentAnswer, code, text)
			opt.Selected = chosen
			switch {
			case answerMatches(correction.CorrectAnswer, code, text):
				opt.Verdict = VerdictCorrect
			case chosen:
				opt.Verdict = VerdictIncorrect
			default:
				opt.Verdict = VerdictNeutral
			}
		} else {
			opt.Selected = code == selectedCode
		}
		view.Options = append(view.Options, opt)
	}
	return view
}

// answerMatches compares a backend-reported answer against an option. The
// backend is inconsistent about the form (sometimes a bare code, sometimes
// a letter-prefixed option string), so both are accepted.
func answerMatches(raw, code, optionText string) bool {
	n := strings.ToLower(strings.TrimSpace(raw))
	if n == "" {
		return false
	}
	if prefix, _, found := strings.Cut(n, "."); found {
		if p := strings.TrimSpace(prefix); len(p) == 1 && p >= "a" && p <= "e" {
			n = p
		}
	}
	return n == code || n == strings.ToLower(strings.TrimSpace(optionText))
}
