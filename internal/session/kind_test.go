package session

import (
	"errors"
	"testing"
)

func TestKindFromFlag(t *testing.T) {
	if KindFromFlag(false) != KindStandard || KindFromFlag(true) != KindCompetition {
		t.Fatal("KindFromFlag mapping broken")
	}
	if KindStandard.String() != "standard" || KindCompetition.String() != "competition" {
		t.Fatal("kind String mapping broken")
	}
}

func TestValidateSelection(t *testing.T) {
	four := []string{"MATHEMATICS", "ENGLISH LANGUAGE", "PHYSICS", "CHEMISTRY"}

	tests := []struct {
		name     string
		kind     ExamKind
		subjects []string
		year     string
		wantErr  error
	}{
		{"standard single subject", KindStandard, []string{"MATHEMATICS"}, "", nil},
		{"standard four subjects", KindStandard, four, "", nil},
		{"standard no year needed", KindStandard, []string{"PHYSICS"}, "", nil},
		{"empty selection", KindStandard, nil, "", ErrEmptySubjects},
		{"standard too many", KindStandard, append([]string{"BIOLOGY"}, four...), "", ErrSubjectCount},
		{"competition full set with year", KindCompetition, four, "2023", nil},
		{"competition too few", KindCompetition, []string{"MATHEMATICS", "PHYSICS"}, "2023", ErrSubjectCount},
		{"competition missing year", KindCompetition, four, "", ErrYearRequired},
		{"competition blank year", KindCompetition, four, "   ", ErrYearRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.kind.ValidateSelection(tt.subjects, tt.year)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSubject(t *testing.T) {
	tests := []struct{ in, want string }{
		{"mathematics", "MATHEMATICS"},
		{"  English Language  ", "ENGLISH LANGUAGE"},
		{"PHYSICS", "PHYSICS"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSubject(tt.in); got != tt.want {
			t.Errorf("NormalizeSubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
