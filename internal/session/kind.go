package session

import (
	"fmt"
	"strings"
)

// ExamKind is the tagged exam variant carried from bootstrap through
// submission. Kind-specific rules are pure functions of the tag.
type ExamKind int

const (
	// KindStandard is normal practice: 1-4 subjects, year optional.
	KindStandard ExamKind = iota
	// KindCompetition is the ranked mode: a full 4-subject combination
	// and an explicit exam year are required.
	KindCompetition
)

// KindFromFlag maps the wire-level competition flag to a kind.
func KindFromFlag(competition bool) ExamKind {
	if competition {
		return KindCompetition
	}
	return KindStandard
}

func (k ExamKind) String() string {
	if k == KindCompetition {
		return "competition"
	}
	return "standard"
}

// IsCompetition reports whether kind-specific backend scoring applies.
func (k ExamKind) IsCompetition() bool {
	return k == KindCompetition
}

// MinSubjects is the smallest allowed subject selection.
func (k ExamKind) MinSubjects() int {
	if k == KindCompetition {
		return 4
	}
	return 1
}

// MaxSubjects is the largest allowed subject selection.
func (k ExamKind) MaxSubjects() int {
	return 4
}

// RequiresYear reports whether an explicit exam year must be chosen.
func (k ExamKind) RequiresYear() bool {
	return k == KindCompetition
}

// ValidateSelection checks a subject/year selection against the kind's
// rules. It never touches the network; bootstrap fails fast on error.
func (k ExamKind) ValidateSelection(subjects []string, year string) error {
	if len(subjects) == 0 {
		return ErrEmptySubjects
	}
	if len(subjects) < k.MinSubjects() || len(subjects) > k.MaxSubjects() {
		return fmt.Errorf("%w: %s requires %d-%d subjects, got %d",
			ErrSubjectCount, k, k.MinSubjects(), k.MaxSubjects(), len(subjects))
	}
	if k.RequiresYear() && strings.TrimSpace(year) == "" {
		return ErrYearRequired
	}
	return nil
}

// NormalizeSubject canonicalizes a subject name: trimmed, upper-cased.
// Subject identity everywhere in the session uses this form.
func NormalizeSubject(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
