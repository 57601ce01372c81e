package session

import (
	"context"
	"sync"

	"github.com/preptly/cbt-gateway/internal/config"
	"github.com/preptly/cbt-gateway/internal/gateway"
	"github.com/preptly/cbt-gateway/internal/store"
	"github.com/rs/zerolog"
)

// Manager owns one Controller per user.
type Manager struct {
	mu          sync.Mutex
	cfg         Config
	gw          ExamAPI
	st          store.Store
	log         zerolog.Logger
	onFinalized FinalizedFunc
	controllers map[string]*Controller
}

// NewManager creates an empty session manager.
func NewManager(cfg Config, gw ExamAPI, st store.Store, log zerolog.Logger, onFinalized FinalizedFunc) *Manager {
	return &Manager{
		cfg:         cfg,
		gw:          gw,
		st:          st,
		log:         log,
		onFinalized: onFinalized,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the user's controller, refreshing its credential.
func (m *Manager) Get(userID string, ts gateway.TokenSource) (*Controller, bool) {
	m.mu.Lock()
	ctrl, ok := m.controllers[userID]
	m.mu.Unlock()
	if ok {
		ctrl.SetTokenSource(ts)
	}
	return ctrl, ok
}

// Start creates a fresh controller for the user and bootstraps it. Any
// previous controller for the user is detached first: its countdown is
// disarmed so an orphaned clock can never auto-submit the abandoned
// attempt or clear the durable ledger key the new session writes through.
func (m *Manager) Start(ctx context.Context, userID string, ts gateway.TokenSource, sel Selection) (*Controller, error) {
	m.mu.Lock()
	old := m.controllers[userID]
	m.mu.Unlock()
	if old != nil {
		old.Detach()
	}

	ctrl := NewController(
		userID,
		sel,
		m.cfg,
		m.gw,
		m.st,
		config.CacheKey.QuizAnswersKey(userID),
		ts,
		m.log,
		m.onFinalized,
	)

	// Restore persisted answers before the controller serves anything so
	// a reload mid-exam keeps every in-flight answer.
	if err := ctrl.RestoreLedger(ctx); err != nil {
		m.log.Warn().Err(err).Str("user_id", userID).Msg("Ledger restore failed")
	}

	m.mu.Lock()
	m.controllers[userID] = ctrl
	m.mu.Unlock()

	if err := ctrl.Start(ctx); err != nil {
		return ctrl, err
	}
	return ctrl, nil
}

// Remove drops the user's controller after an abandon.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, userID)
}
