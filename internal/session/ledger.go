package session

import (
	"context"
	"sort"
	"strings"

	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/store"
)

// answerCodes maps an option's position to its answer code.
var answerCodes = [...]string{"a", "b", "c", "d", "e"}

// CodeForIndex returns the answer code for an option position, or "" when
// the position is out of the supported range.
func CodeForIndex(i int) string {
	if i < 0 || i >= len(answerCodes) {
		return ""
	}
	return answerCodes[i]
}

// Ledger is the single source of truth for the user's chosen answers,
// keyed by (subject, questionId). Every mutation writes through to durable
// storage under a fixed session-scoped key so a reload never loses
// progress. Display state (answered/current/unanswered) is always derived
// from the ledger, never tracked separately.
type Ledger struct {
	key     string
	store   store.Store
	entries map[string]string // "SUBJECT|questionId" → code
}

func newLedger(key string, st store.Store) *Ledger {
	return &Ledger{
		key:     key,
		store:   st,
		entries: make(map[string]string),
	}
}

func ledgerField(subject, questionID string) string {
	return NormalizeSubject(subject) + "|" + questionID
}

// Restore loads persisted entries. Called once, before the first state
// snapshot is served, so in-flight answers survive a reload.
func (l *Ledger) Restore(ctx context.Context) error {
	entries, err := l.store.Answers(ctx, l.key)
	if err != nil {
		return err
	}
	for field, code := range entries {
		l.entries[field] = code
	}
	return nil
}

// Select records the chosen option for a question, deriving the answer
// code from the option's position in the question's option list.
// Re-selecting replaces; an option not present in the list is a no-op
// (returns ""). The new entry is written through to storage. A failed
// write-through never unwinds the in-memory entry; the code comes back
// together with the error so the caller can log the degraded persistence.
func (l *Ledger) Select(ctx context.Context, subject string, q *model.Question, option string) (string, error) {
	idx := -1
	for i, o := range q.Options {
		if o == option {
			idx = i
			break
		}
	}
	code := CodeForIndex(idx)
	if code == "" {
		return "", nil
	}

	field := ledgerField(subject, q.ID)
	l.entries[field] = code

	if err := l.store.SetAnswer(ctx, l.key, field, code); err != nil {
		return code, err
	}
	return code, nil
}

// Answer returns the stored code for (subject, questionId).
func (l *Ledger) Answer(subject, questionID string) (string, bool) {
	code, ok := l.entries[ledgerField(subject, questionID)]
	return code, ok
}

// Has reports whether (subject, questionId) has an answer.
func (l *Ledger) Has(subject, questionID string) bool {
	_, ok := l.Answer(subject, questionID)
	return ok
}

// Len returns the number of answered questions across all subjects.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Serialize flattens the ledger for submission. Codes are lower-cased and
// entries ordered by question id for a deterministic wire payload.
func (l *Ledger) Serialize() []model.AnswerEntry {
	out := make([]model.AnswerEntry, 0, len(l.entries))
	for field, code := range l.entries {
		_, questionID, found := strings.Cut(field, "|")
		if !found {
			continue
		}
		out = append(out, model.AnswerEntry{
			QuestionID: questionID,
			Answer:     strings.ToLower(code),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Clear wipes the ledger in memory and in durable storage. Called on
// successful finalization and on explicit reset/rewrite.
func (l *Ledger) Clear(ctx context.Context) error {
	l.entries = make(map[string]string)
	return l.store.Clear(ctx, l.key)
}
