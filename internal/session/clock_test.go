package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"01:30:00", 5400},
		{"00:00:00", 0},
		{"02:00:00", 7200},
		{"5:00", 300},
		{"1:2:3", 3723},
		{"00:45", 45},
		{"45", 0},          // no separator
		{"", 0},            // empty
		{"1:2:3:4", 0},     // too many parts
		{"aa:bb:cc", 0},    // non-numeric
		{"-1:00:00", 0},    // negative component
		{"01:x0:00", 0},    // partial garbage
		{" 01 : 30 : 00 ", 5400},
	}

	for _, tt := range tests {
		if got := ParseClock(tt.in); got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{5400, "01:30:00"},
		{-7, "00:00:00"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClockExpiresExactlyOnce(t *testing.T) {
	var fired int32
	c := NewClock(2, time.Hour, func() { atomic.AddInt32(&fired, 1) })
	c.Start()

	if done := c.tick(); done {
		t.Fatal("clock reported done after first tick with 2s budget")
	}
	if got := c.RemainingSeconds(); got != 1 {
		t.Fatalf("remaining = %d after one tick, want 1", got)
	}

	if done := c.tick(); !done {
		t.Fatal("clock did not report done on the expiring tick")
	}
	if !c.Expired() {
		t.Fatal("clock not expired after reaching zero")
	}
	if got := c.Remaining(); got != ClockZero {
		t.Fatalf("remaining display = %q, want %q", got, ClockZero)
	}

	// Extra ticks after expiry must not re-fire the callback.
	c.tick()
	c.tick()
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("expiry callback fired %d times, want 1", n)
	}
}

func TestClockZeroBudgetExpiresOnStart(t *testing.T) {
	var fired int32
	c := NewClock(0, time.Hour, func() { atomic.AddInt32(&fired, 1) })
	c.Start()

	if !c.Expired() {
		t.Fatal("zero-budget clock should expire immediately on Start")
	}
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("expiry callback fired %d times, want 1", n)
	}

	// Restarting an expired clock stays a no-op.
	c.Start()
	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("expiry callback re-fired on restart, count = %d", n)
	}
}

func TestClockPauseResume(t *testing.T) {
	c := NewClock(10, time.Hour, nil)
	c.Start()
	c.Pause()

	if c.Expired() {
		t.Fatal("paused clock must not be expired")
	}
	if got := c.RemainingSeconds(); got != 10 {
		t.Fatalf("remaining = %d after pause, want 10", got)
	}

	// Ticks while paused are ignored.
	c.tick()
	if got := c.RemainingSeconds(); got != 10 {
		t.Fatalf("remaining = %d after tick while paused, want 10", got)
	}

	c.Resume()
	if done := c.tick(); done {
		t.Fatal("tick after resume reported expiry with 10s left")
	}
	if got := c.RemainingSeconds(); got != 9 {
		t.Fatalf("remaining = %d after resume and one tick, want 9", got)
	}

	c.Pause()
	c.Pause() // double pause is a no-op
}

func TestClockPauseAfterExpiryIsNoop(t *testing.T) {
	c := NewClock(1, time.Hour, nil)
	c.Start()
	c.tick()

	c.Pause()
	if !c.Expired() {
		t.Fatal("pause must not un-expire the clock")
	}
}
