package flow

import (
	"context"
	"sync"
	"time"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/gateway"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/metrics"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

// OutcomeRecorder receives terminal outcomes for audit. Recording is
// best-effort; failures never affect the session.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, userID string, snap models.SessionSnapshot) error
}

type ManagerConfig struct {
	// InactivityTimeout is how long a session may sit without user activity
	// before the guard resets it.
	InactivityTimeout time.Duration
	// SweepInterval is how often the guard checks session activity.
	SweepInterval time.Duration
	// OutcomeCountdown returns the flow to amount selection this long after a
	// terminal outcome was shown.
	OutcomeCountdown time.Duration
}

type entry struct {
	ctrl *Controller
	obs  *gateway.Observer
}

// Manager is the registry of live donation sessions. It owns the inactivity
// guard: a sweep loop that resets sessions whose last activity is older than
// the configured timeout and drops sessions that are already back at the
// start.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	backend  Backend
	recorder OutcomeRecorder
	cfg      ManagerConfig
	log      *utils.Logger
	done     chan struct{}
}

func NewManager(backend Backend, recorder OutcomeRecorder, cfg ManagerConfig, log *utils.Logger) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		backend:  backend,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
		done:     make(chan struct{}),
	}

	go m.sweepLoop()

	return m
}

// Create starts a fresh donation session for the user and returns its
// controller.
func (m *Manager) Create(userID string) *Controller {
	ctrl := NewController(userID, m.backend, m.cfg.OutcomeCountdown)
	obs := gateway.NewObserver(ctrl, m.log)
	ctrl.SetHooks(m.outcomeHook(ctrl), obs.Rearm)

	m.mu.Lock()
	m.sessions[ctrl.ID()] = &entry{ctrl: ctrl, obs: obs}
	m.mu.Unlock()

	metrics.SessionsStarted.Inc()
	m.log.Info("donation_session_created", map[string]interface{}{"sessionId": ctrl.ID()})
	return ctrl
}

// Get returns the controller and gateway observer for a session id.
func (m *Manager) Get(id string) (*Controller, *gateway.Observer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	return e.ctrl, e.obs, nil
}

// Remove resets and drops a session, cancelling any pending outcome
// countdown.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		e.ctrl.Reset()
	}
}

// Close stops the inactivity sweep loop.
func (m *Manager) Close() {
	close(m.done)
}

func (m *Manager) outcomeHook(ctrl *Controller) func(models.SessionSnapshot) {
	return func(snap models.SessionSnapshot) {
		metrics.OutcomesReported.WithLabelValues(snap.Outcome.String()).Inc()
		m.log.Info("payment_outcome_reported", map[string]interface{}{
			"sessionId": snap.ID,
			"outcome":   snap.Outcome.String(),
			"method":    snap.PaymentMethod.String(),
		})

		if m.recorder == nil {
			return
		}
		userID := ctrl.UserID()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := m.recorder.RecordOutcome(ctx, userID, snap); err != nil {
				m.log.Error("outcome_record_failed", map[string]interface{}{
					"sessionId": snap.ID,
					"error":     err.Error(),
				})
			}
		}()
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	entries := make(map[string]*entry, len(m.sessions))
	for id, e := range m.sessions {
		entries[id] = e
	}
	m.mu.Unlock()

	cutoff := time.Now().UTC().Add(-m.cfg.InactivityTimeout)
	for id, e := range entries {
		if e.ctrl.LastActivity().After(cutoff) {
			continue
		}

		snap := e.ctrl.Snapshot()
		if snap.Step == models.StepAmountSelection && snap.AmountCents == 0 {
			// Already at the start and stale, nothing worth keeping.
			m.mu.Lock()
			delete(m.sessions, id)
			m.mu.Unlock()
			continue
		}

		e.ctrl.Reset()
		metrics.InactivityResets.Inc()
		m.log.Info("session_reset_inactivity", map[string]interface{}{
			"sessionId": id,
			"step":      snap.Step.String(),
		})
	}
}
