package session

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ClockZero is the terminal clock display.
const ClockZero = "00:00:00"

type clockState int

const (
	clockIdle clockState = iota
	clockRunning
	clockExpired
)

// Clock is the countdown for one exam attempt: idle → running → expired.
// It ticks once per interval while running, never goes negative, and fires
// its expiry callback exactly once. That callback is the unique trigger
// for auto-submit.
// Navigation and UI overlays never pause it; only Pause (manual submit) or
// expiry stop the ticking.
type Clock struct {
	mu        sync.Mutex
	state     clockState
	remaining int // seconds
	interval  time.Duration
	stop      chan struct{}
	onExpire  func()
}

// NewClock creates an idle clock with the given budget in seconds.
// A non-positive budget expires immediately on Start (fail-safe).
func NewClock(seconds int, interval time.Duration, onExpire func()) *Clock {
	if seconds < 0 {
		seconds = 0
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Clock{
		state:     clockIdle,
		remaining: seconds,
		interval:  interval,
		onExpire:  onExpire,
	}
}

// Start begins ticking. Starting an expired clock is a no-op; starting a
// clock with nothing left expires it immediately.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.state != clockIdle {
		c.mu.Unlock()
		return
	}
	if c.remaining <= 0 {
		c.state = clockExpired
		c.mu.Unlock()
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}
	c.state = clockRunning
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.run(stop)
}

func (c *Clock) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick decrements once. Returns true when the clock has expired and the
// ticking goroutine should exit. Extra ticks after expiry are no-ops: the
// expiry callback fires exactly once.
func (c *Clock) tick() bool {
	c.mu.Lock()
	if c.state != clockRunning {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return false
	}
	c.remaining = 0
	c.state = clockExpired
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire()
	}
	return true
}

// Pause halts ticking before a manual submission, preventing a duplicate
// auto-submit race. Remaining time is preserved so a failed submission can
// Resume. Pausing an expired clock is a no-op.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != clockRunning {
		return
	}
	c.state = clockIdle
	close(c.stop)
	c.stop = nil
}

// Resume restarts a paused clock with whatever budget is left.
func (c *Clock) Resume() {
	c.Start()
}

// Expired reports whether the clock has reached zero.
func (c *Clock) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == clockExpired
}

// RemainingSeconds returns the seconds left (never negative).
func (c *Clock) RemainingSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Remaining returns the display form, "HH:MM:SS".
func (c *Clock) Remaining() string {
	return FormatClock(c.RemainingSeconds())
}

// FormatClock renders seconds as "HH:MM:SS".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseClock converts a "HH:MM:SS" string (short forms like "5:00" are
// padded on the left) into seconds. Malformed input yields zero: an
// unreadable clock is treated as already expired rather than crashing,
// which routes through the same finalization flow as a normal expiry.
func ParseClock(clock string) int {
	if !strings.Contains(clock, ":") {
		return 0
	}
	parts := strings.Split(clock, ":")
	for len(parts) < 3 {
		parts = append([]string{"00"}, parts...)
	}
	if len(parts) > 3 {
		return 0
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
