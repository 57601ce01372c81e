package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/preptly/cbt-gateway/internal/gateway"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/store"
)

func testSelection() Selection {
	return Selection{Subjects: []string{"mathematics", "english language"}, Kind: KindStandard}
}

func TestManagerStartAndGet(t *testing.T) {
	api := twoSubjectAPI()
	mgr := NewManager(
		Config{ClockBudget: "01:30:00", TickInterval: time.Hour},
		api, store.NewMemoryStore(), zerolog.Nop(), nil,
	)

	if _, ok := mgr.Get("u1", gateway.StaticToken("tok")); ok {
		t.Fatal("Get before Start must report no session")
	}

	ctrl, err := mgr.Start(context.Background(), "u1", gateway.StaticToken("tok"), testSelection())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, ok := mgr.Get("u1", gateway.StaticToken("tok"))
	if !ok || got != ctrl {
		t.Fatal("Get did not return the started controller")
	}

	mgr.Remove("u1")
	if _, ok := mgr.Get("u1", gateway.StaticToken("tok")); ok {
		t.Fatal("Get after Remove must report no session")
	}
}

func TestManagerStartDetachesPreviousSession(t *testing.T) {
	api := twoSubjectAPI()
	st := store.NewMemoryStore()
	ctx := context.Background()

	archived := 0
	onFinalized := func(string, ExamKind, []string, *model.ExamResult) {
		archived++
	}

	mgr := NewManager(
		Config{ClockBudget: "00:00:02", TickInterval: time.Hour},
		api, st, zerolog.Nop(), onFinalized,
	)

	first, err := mgr.Start(ctx, "u1", gateway.StaticToken("tok"), testSelection())
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	first.mu.Lock()
	firstClock := first.clock
	first.mu.Unlock()

	second, err := mgr.Start(ctx, "u1", gateway.StaticToken("tok"), testSelection())
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := second.SelectAnswer(ctx, "m2", "9"); err != nil {
		t.Fatalf("SelectAnswer on the new session: %v", err)
	}

	// Run the replaced session's countdown all the way down. The detach
	// must have disarmed it: no upstream submit, no archive, and the new
	// session's durable answers untouched.
	firstClock.tick()
	firstClock.tick()
	firstClock.tick()
	first.expire()

	if api.finishCalls != 0 {
		t.Fatalf("replaced session reached FinishExam %d times, want 0", api.finishCalls)
	}
	if archived != 0 {
		t.Fatalf("replaced session archived %d attempts, want 0", archived)
	}
	if got := first.Status(); got != StatusFailed {
		t.Fatalf("replaced session status = %q, want failed", got)
	}
	if got := second.Status(); got != StatusInProgress {
		t.Fatalf("active session status = %q, want in-progress", got)
	}

	persisted, err := st.Answers(ctx, "user:u1:quiz_answers")
	if err != nil {
		t.Fatalf("Answers: %v", err)
	}
	if persisted["MATHEMATICS|m2"] != "b" {
		t.Fatalf("active session's durable ledger = %v, want MATHEMATICS|m2=b", persisted)
	}
	if second.Snapshot().Answered != 1 {
		t.Fatal("active session lost its in-memory answer")
	}
}
