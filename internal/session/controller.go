package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/preptly/cbt-gateway/internal/gateway"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/store"
	"github.com/rs/zerolog"
)

// Status is the lifecycle state of an exam session.
type Status string

const (
	StatusBootstrapping    Status = "bootstrapping"
	StatusLoadingQuestions Status = "loading-questions"
	StatusInProgress       Status = "in-progress"
	StatusSubmitting       Status = "submitting"
	StatusCompleted        Status = "completed"
	StatusReviewing        Status = "reviewing"
	StatusFailed           Status = "failed"
)

// ExamAPI is the slice of the remote exam API the controller consumes.
// *gateway.Client satisfies it; tests substitute a fake.
type ExamAPI interface {
	StartExam(ctx context.Context, ts gateway.TokenSource, subjects []string, year string, competition bool) (*gateway.StartedSession, error)
	FetchSubjectQuestions(ctx context.Context, ts gateway.TokenSource, sessionID string) ([]gateway.SubjectQuestions, error)
	FinishExam(ctx context.Context, ts gateway.TokenSource, sessionID string, answers []model.AnswerEntry, questionIDs []string) (*model.ExamResult, error)
}

// Config tunes a controller. TickInterval exists for tests; production
// always runs one-second ticks.
type Config struct {
	ClockBudget  string
	AdvanceDelay time.Duration
	TickInterval time.Duration
}

// Selection is the user's exam choice, fixed for the session's lifetime.
type Selection struct {
	Subjects []string
	Year     string
	Kind     ExamKind
}

// FinalizedFunc is notified after a successful finalization (for attempt
// archiving). It runs on its own goroutine; failures there never affect
// the session.
type FinalizedFunc func(userID string, kind ExamKind, subjects []string, result *model.ExamResult)

// Controller is the exam session state machine for one user: bootstrap,
// question cache, answer ledger, countdown clock, navigation and
// finalization. All event handlers are serialized through one mutex, the
// Go rendering of the reference's single-threaded event loop.
type Controller struct {
	mu sync.Mutex

	userID string
	cfg    Config
	gw     ExamAPI
	ts     gateway.TokenSource
	log    zerolog.Logger

	selection Selection
	status    Status
	lastErr   string

	sessionID string
	subjects  []string
	active    string
	questions map[string][]model.Question

	ledger      *Ledger
	nav         *Navigator
	clock       *Clock
	submitting  bool
	detached    bool
	result      *model.ExamResult
	corrections map[string]model.Correction

	onFinalized FinalizedFunc
}

// NewController builds an idle controller. The ledger is bound to
// storageKey; call RestoreLedger before serving the first snapshot.
func NewController(
	userID string,
	sel Selection,
	cfg Config,
	gw ExamAPI,
	st store.Store,
	storageKey string,
	ts gateway.TokenSource,
	log zerolog.Logger,
	onFinalized FinalizedFunc,
) *Controller {
	normalized := make([]string, 0, len(sel.Subjects))
	for _, s := range sel.Subjects {
		if n := NormalizeSubject(s); n != "" {
			normalized = append(normalized, n)
		}
	}
	sel.Subjects = normalized

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	return &Controller{
		userID:      userID,
		cfg:         cfg,
		gw:          gw,
		ts:          ts,
		log:         log.With().Str("component", "session").Str("user_id", userID).Logger(),
		selection:   sel,
		status:      StatusBootstrapping,
		questions:   make(map[string][]model.Question),
		ledger:      newLedger(storageKey, st),
		nav:         newNavigator(),
		onFinalized: onFinalized,
	}
}

// SetTokenSource refreshes the forwarded credential. Called on each
// authenticated request so clock-driven auto-submit uses a current token.
func (c *Controller) SetTokenSource(ts gateway.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ts = ts
}

// RestoreLedger loads persisted answers from durable storage. Runs once,
// before the controller serves anything, so a reload never loses progress.
func (c *Controller) RestoreLedger(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Restore(ctx)
}

// Start bootstraps the session: validates the selection, creates the
// upstream session, loads every subject's questions, then arms the clock
// with the full budget. Any failure leaves status=failed with no partial
// question state.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	sel := c.selection
	ts := c.ts

	// An invalid selection never contacts the backend.
	if err := sel.Kind.ValidateSelection(sel.Subjects, sel.Year); err != nil {
		c.status = StatusFailed
		c.lastErr = err.Error()
		c.mu.Unlock()
		return err
	}
	c.status = StatusBootstrapping
	c.mu.Unlock()

	started, err := c.gw.StartExam(ctx, ts, sel.Subjects, sel.Year, sel.Kind.IsCompetition())
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrBootstrap, err))
		return fmt.Errorf("%w: %v", ErrBootstrap, err)
	}

	subjects := make([]string, 0, len(started.Subjects))
	for _, s := range started.Subjects {
		if n := NormalizeSubject(s); n != "" {
			subjects = append(subjects, n)
		}
	}
	if len(subjects) == 0 {
		err := fmt.Errorf("%w: server returned no subjects", ErrBootstrap)
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.sessionID = started.ID
	c.subjects = subjects
	c.active = subjects[0]
	c.nav.Activate(c.active)
	c.status = StatusLoadingQuestions
	sessionID := c.sessionID
	c.mu.Unlock()

	grouped, err := c.fetchQuestions(ctx, ts, sessionID, subjects)
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.questions = grouped
	c.lastErr = ""

	// The clock always starts from the full budget, even on rewrite. The
	// server-reported remaining time is deliberately ignored.
	budget := ParseClock(c.cfg.ClockBudget)
	clock := NewClock(budget, c.cfg.TickInterval, c.expire)
	c.clock = clock
	c.status = StatusInProgress
	c.mu.Unlock()

	// Armed outside the lock: a zero budget expires synchronously and the
	// expiry callback takes the mutex itself.
	clock.Start()

	c.log.Info().
		Str("session_id", sessionID).
		Strs("subjects", subjects).
		Str("kind", sel.Kind.String()).
		Msg("Exam session started")
	return nil
}

// fetchQuestions loads the whole paper in one call and groups it by
// normalized subject. A subject with zero questions is recoverable; a
// fetch error fails the whole load so a partially-loaded paper is never
// presented as ready.
func (c *Controller) fetchQuestions(ctx context.Context, ts gateway.TokenSource, sessionID string, subjects []string) (map[string][]model.Question, error) {
	lists, err := c.gw.FetchSubjectQuestions(ctx, ts, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	byName := make(map[string][]model.Question, len(lists))
	for _, sq := range lists {
		byName[NormalizeSubject(sq.Subject)] = sq.Questions
	}

	grouped := make(map[string][]model.Question, len(subjects))
	for _, subject := range subjects {
		questions := byName[subject]
		if len(questions) == 0 {
			c.log.Warn().Str("subject", subject).Msg("No questions returned for subject")
		}
		grouped[subject] = questions
	}
	return grouped, nil
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusFailed
	c.lastErr = err.Error()
	c.log.Error().Err(err).Msg("Session failed")
}

// allQuestionIDs flattens the cache in subject order for finalization.
func (c *Controller) allQuestionIDs() []string {
	var ids []string
	for _, subject := range c.subjects {
		for _, q := range c.questions[subject] {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// ─── Navigation & selection ────────────────────────────────────────────

// SwitchSubject activates another subject. The subject being left keeps
// its answers and its current index.
func (c *Controller) SwitchSubject(subject string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress && c.status != StatusReviewing {
		return ErrNotInProgress
	}
	subject = NormalizeSubject(subject)
	if !c.hasSubject(subject) {
		return ErrUnknownSubject
	}
	c.active = subject
	c.nav.Activate(subject)
	return nil
}

// Next advances within the active subject, clamped at the last question.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress && c.status != StatusReviewing {
		return ErrNotInProgress
	}
	c.nav.Next(c.active, len(c.questions[c.active]))
	return nil
}

// Prev steps back within the active subject, clamped at the first question.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress && c.status != StatusReviewing {
		return ErrNotInProgress
	}
	c.nav.Prev(c.active)
	return nil
}

// Jump navigates directly to a 1-based index from the question grid.
func (c *Controller) Jump(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress && c.status != StatusReviewing {
		return ErrNotInProgress
	}
	if !c.nav.Jump(c.active, index, len(c.questions[c.active])) {
		return fmt.Errorf("index %d out of range for %s", index, c.active)
	}
	return nil
}

// SelectAnswer records the chosen option for a question of the active
// subject and schedules the auto-advance. Unknown question or option is a
// silent no-op, never a crash.
func (c *Controller) SelectAnswer(ctx context.Context, questionID, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress {
		return ErrNotInProgress
	}
	return c.selectLocked(ctx, questionID, option)
}

func (c *Controller) selectLocked(ctx context.Context, questionID, option string) error {
	qs := c.questions[c.active]
	if len(qs) == 0 {
		return ErrNoQuestions
	}
	var q *model.Question
	for i := range qs {
		if qs[i].ID == questionID {
			q = &qs[i]
			break
		}
	}
	if q == nil {
		c.log.Debug().Str("question_id", questionID).Msg("Selection for unknown question ignored")
		return nil
	}
	code, err := c.ledger.Select(ctx, c.active, q, option)
	if code == "" {
		c.log.Debug().Str("question_id", questionID).Msg("Selection of unknown option ignored")
		return nil
	}
	if err != nil {
		// The answer is kept in memory; only the durable copy is stale.
		c.log.Warn().Err(err).
			Str("question_id", questionID).
			Msg("Answer write-through failed, held in memory only")
	}
	c.scheduleAdvance()
	return nil
}

// scheduleAdvance moves to the next question of the active subject after
// the configured delay, unless the user is on the subject's last question
// or has navigated elsewhere in the meantime. Caller holds the mutex.
func (c *Controller) scheduleAdvance() {
	subject := c.active
	total := len(c.questions[subject])
	idx := c.nav.Current(subject)
	if idx >= total {
		return
	}
	if c.cfg.AdvanceDelay <= 0 {
		c.nav.Next(subject, total)
		return
	}
	time.AfterFunc(c.cfg.AdvanceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.status != StatusInProgress {
			return
		}
		if c.nav.Current(subject) != idx {
			return
		}
		c.nav.Next(subject, len(c.questions[subject]))
	})
}

// Key routes a keyboard shortcut: n/p step, a-e select the option at that
// position for the current question through the exact same path as a
// pointer selection. Shortcuts are dead outside in-progress.
func (c *Controller) Key(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress {
		return ErrNotInProgress
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) != 1 {
		return nil
	}

	switch key {
	case "n":
		c.nav.Next(c.active, len(c.questions[c.active]))
		return nil
	case "p":
		c.nav.Prev(c.active)
		return nil
	}

	pos := int(key[0] - 'a')
	if pos < 0 || pos >= len(answerCodes) {
		return nil
	}
	qs := c.questions[c.active]
	idx := c.nav.Current(c.active)
	if idx < 1 || idx > len(qs) {
		return nil
	}
	q := qs[idx-1]
	if pos >= len(q.Options) {
		return nil
	}
	return c.selectLocked(ctx, q.ID, q.Options[pos])
}

// ─── Finalization ──────────────────────────────────────────────────────

// Submit is the manual finalization path, entered after the UI's two-step
// confirmation. It pauses the clock first so expiry cannot race a second
// finalization, and refuses to start while one is in flight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	if c.status != StatusInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	if c.clock != nil {
		c.clock.Pause()
	}
	return c.finalizeLocked(ctx)
}

// expire is the clock's single-shot callback: the automatic submission
// path. It converges on the same finalization flow as Submit.
func (c *Controller) expire() {
	c.mu.Lock()
	if c.detached || c.submitting || c.status != StatusInProgress {
		c.mu.Unlock()
		return
	}
	c.log.Info().Str("session_id", c.sessionID).Msg("Clock expired, auto-submitting")
	_ = c.finalizeLocked(context.Background())
}

// finalizeLocked is entered holding the mutex. It snapshots the payload,
// releases the lock for the network call, then reapplies the outcome.
// The submitting flag keeps manual and automatic paths mutually exclusive.
func (c *Controller) finalizeLocked(ctx context.Context) error {
	c.submitting = true
	c.status = StatusSubmitting
	answers := c.ledger.Serialize()
	questionIDs := c.allQuestionIDs()
	sessionID := c.sessionID
	ts := c.ts
	c.mu.Unlock()

	result, err := c.gw.FinishExam(ctx, ts, sessionID, answers, questionIDs)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil || !result.IsCompleted {
		// The attempt is not lost: ledger and remaining time stay put,
		// and the session returns to in-progress for a retry.
		if err == nil {
			err = fmt.Errorf("backend reported the exam as not completed")
		}
		c.status = StatusInProgress
		if c.detached {
			c.status = StatusFailed
		}
		c.lastErr = fmt.Sprintf("%s: %v", ErrSubmit, err)
		if c.clock != nil && !c.clock.Expired() {
			c.clock.Resume()
		}
		c.log.Error().Err(err).Str("session_id", sessionID).Msg("Finalization failed")
		return fmt.Errorf("%w: %v", ErrSubmit, err)
	}

	for i := range result.SubjectScores {
		result.SubjectScores[i].Subject = NormalizeSubject(result.SubjectScores[i].Subject)
	}
	c.result = result
	c.corrections = indexCorrections(result.Corrections)
	c.lastErr = ""
	c.status = StatusCompleted

	// A detach that landed while the network call was in flight means a
	// newer session now owns the storage key; leave it alone and do not
	// archive the superseded attempt.
	if c.detached {
		return nil
	}

	// Progress is only discarded once the backend has confirmed completion.
	if err := c.ledger.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear persisted ledger")
	}

	c.log.Info().
		Str("session_id", sessionID).
		Int("total_score", result.TotalScore).
		Str("time_spent", result.TimeSpent).
		Msg("Exam finalized")

	if c.onFinalized != nil {
		go c.onFinalized(c.userID, c.selection.Kind, append([]string(nil), c.subjects...), result)
	}
	return nil
}

func indexCorrections(list []model.Correction) map[string]model.Correction {
	if len(list) == 0 {
		return nil
	}
	out := make(map[string]model.Correction, len(list))
	for _, cr := range list {
		out[strings.ToLower(cr.QuestionID)] = cr
	}
	return out
}

// ─── Terminal transitions ──────────────────────────────────────────────

// EnterReview switches a completed session into read-only corrections
// mode. One-way: there is no path back to completed or in-progress.
func (c *Controller) EnterReview() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusCompleted {
		return ErrNotCompleted
	}
	if len(c.corrections) == 0 {
		return ErrNoCorrections
	}
	c.status = StatusReviewing
	// Review starts at the first question of the first subject.
	c.nav.reset()
	c.active = c.subjects[0]
	c.nav.Activate(c.active)
	return nil
}

// Rewrite discards the finished attempt and bootstraps a fresh session
// with the same subjects, year and kind, and a full clock.
func (c *Controller) Rewrite(ctx context.Context) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	switch c.status {
	case StatusCompleted, StatusReviewing, StatusFailed:
	default:
		c.mu.Unlock()
		return ErrNotCompleted
	}
	c.resetLocked(ctx)
	c.mu.Unlock()

	return c.Start(ctx)
}

// Detach permanently disarms a controller that is being replaced. The
// clock stops, a pending expiry can never fire, and a finalization
// already in flight skips the shared-storage wipe and the archive hook.
// The durable ledger key belongs to the successor from here on.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
	if c.clock != nil {
		c.clock.Pause()
		c.clock = nil
	}
	switch c.status {
	case StatusCompleted, StatusReviewing, StatusFailed:
	default:
		c.status = StatusFailed
	}
}

// Abandon clears all session state and durable storage ("start over").
// An in-flight submission always runs to completion first.
func (c *Controller) Abandon(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	if c.clock != nil {
		c.clock.Pause()
	}
	c.resetLocked(ctx)
	c.status = StatusFailed
	c.lastErr = ""
	return nil
}

// resetLocked wipes per-attempt state. Caller holds the mutex.
func (c *Controller) resetLocked(ctx context.Context) {
	if err := c.ledger.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear persisted ledger on reset")
	}
	c.nav.reset()
	c.questions = make(map[string][]model.Question)
	c.sessionID = ""
	c.subjects = nil
	c.active = ""
	c.clock = nil
	c.result = nil
	c.corrections = nil
	c.lastErr = ""
}

// Result returns the finalized result, once available.
func (c *Controller) Result() (*model.ExamResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, ErrNotCompleted
	}
	return c.result, nil
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) hasSubject(subject string) bool {
	for _, s := range c.subjects {
		if s == subject {
			return true
		}
	}
	return false
}
