package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/flow"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/gateway"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

type fakeRecorder struct {
	recorded chan models.SessionSnapshot
}

func (f *fakeRecorder) RecordOutcome(ctx context.Context, userID string, snap models.SessionSnapshot) error {
	f.recorded <- snap
	return nil
}

func newTestManager(t *testing.T, backend flow.Backend, recorder flow.OutcomeRecorder, cfg flow.ManagerConfig) *flow.Manager {
	t.Helper()
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 10 * time.Millisecond
	}
	if cfg.InactivityTimeout == 0 {
		cfg.InactivityTimeout = time.Minute
	}
	m := flow.NewManager(backend, recorder, cfg, utils.NewLogger())
	t.Cleanup(m.Close)
	return m
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(t, &fakeBackend{}, nil, flow.ManagerConfig{})

	ctrl := m.Create("user-1")

	got, observer, err := m.Get(ctrl.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != ctrl.ID() {
		t.Fatalf("got session %s, want %s", got.ID(), ctrl.ID())
	}
	if observer == nil {
		t.Fatalf("expected an observer for the session")
	}

	if _, _, err := m.Get("nope"); !errors.Is(err, flow.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerRemove(t *testing.T) {
	m := newTestManager(t, &fakeBackend{}, nil, flow.ManagerConfig{})
	ctrl := m.Create("user-1")

	m.Remove(ctrl.ID())

	if _, _, err := m.Get(ctrl.ID()); !errors.Is(err, flow.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInactivityGuardResetsIdleSessions(t *testing.T) {
	backend := &fakeBackend{hasCertInfo: true}
	m := newTestManager(t, backend, nil, flow.ManagerConfig{
		InactivityTimeout: 30 * time.Millisecond,
		SweepInterval:     10 * time.Millisecond,
	})

	ctrl := m.Create("user-1")
	if err := ctrl.SelectAmount(10000); err != nil {
		t.Fatalf("SelectAmount: %v", err)
	}
	if err := ctrl.ConfirmAmountAndContinue(context.Background()); err != nil {
		t.Fatalf("ConfirmAmountAndContinue: %v", err)
	}
	if got := ctrl.Snapshot().Step; got != models.StepPaymentMethodSelection {
		t.Fatalf("step = %v, want %v", got, models.StepPaymentMethodSelection)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if ctrl.Snapshot().Step == models.StepAmountSelection {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("inactivity guard never reset the session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestActivityKeepsSessionAlive(t *testing.T) {
	backend := &fakeBackend{hasCertInfo: true}
	m := newTestManager(t, backend, nil, flow.ManagerConfig{
		InactivityTimeout: 60 * time.Millisecond,
		SweepInterval:     10 * time.Millisecond,
	})

	ctrl := m.Create("user-1")
	if err := ctrl.SelectAmount(10000); err != nil {
		t.Fatalf("SelectAmount: %v", err)
	}
	if err := ctrl.ConfirmAmountAndContinue(context.Background()); err != nil {
		t.Fatalf("ConfirmAmountAndContinue: %v", err)
	}

	// keep touching for longer than the timeout; the guard must not fire
	stop := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(stop) {
		ctrl.Touch()
		time.Sleep(10 * time.Millisecond)
	}

	if got := ctrl.Snapshot().Step; got != models.StepPaymentMethodSelection {
		t.Fatalf("active session was reset, step = %v", got)
	}
}

func TestInactivityGuardDropsStaleFreshSessions(t *testing.T) {
	m := newTestManager(t, &fakeBackend{}, nil, flow.ManagerConfig{
		InactivityTimeout: 20 * time.Millisecond,
		SweepInterval:     10 * time.Millisecond,
	})

	ctrl := m.Create("user-1")

	deadline := time.Now().Add(time.Second)
	for {
		if _, _, err := m.Get(ctrl.ID()); errors.Is(err, flow.ErrSessionNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stale fresh session was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOutcomeIsRecorded(t *testing.T) {
	backend := &fakeBackend{hasCertInfo: true, onlineRedirect: "https://pay.example/x"}
	recorder := &fakeRecorder{recorded: make(chan models.SessionSnapshot, 1)}
	m := newTestManager(t, backend, recorder, flow.ManagerConfig{})

	ctrl := m.Create("user-1")
	if err := ctrl.SelectAmount(10000); err != nil {
		t.Fatalf("SelectAmount: %v", err)
	}
	if err := ctrl.ConfirmAmountAndContinue(context.Background()); err != nil {
		t.Fatalf("ConfirmAmountAndContinue: %v", err)
	}
	if err := ctrl.SelectPaymentMethod(models.PaymentMethodOnline); err != nil {
		t.Fatalf("SelectPaymentMethod: %v", err)
	}
	if err := ctrl.InitiatePayment(context.Background(), false); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if err := ctrl.ReportPaymentOutcome(models.OutcomeSuccess); err != nil {
		t.Fatalf("ReportPaymentOutcome: %v", err)
	}

	select {
	case snap := <-recorder.recorded:
		if snap.Outcome != models.OutcomeSuccess {
			t.Fatalf("recorded outcome = %v, want %v", snap.Outcome, models.OutcomeSuccess)
		}
		if snap.AmountCents != 10000 {
			t.Fatalf("recorded amount = %d, want 10000", snap.AmountCents)
		}
	case <-time.After(time.Second):
		t.Fatalf("outcome was never recorded")
	}
}

func TestGatewayObserverDrivesSessionToOutcome(t *testing.T) {
	backend := &fakeBackend{hasCertInfo: true, onlineRedirect: "https://pay.example/x"}
	m := newTestManager(t, backend, nil, flow.ManagerConfig{})

	ctrl := m.Create("user-1")
	if err := ctrl.SelectAmount(10000); err != nil {
		t.Fatalf("SelectAmount: %v", err)
	}
	if err := ctrl.ConfirmAmountAndContinue(context.Background()); err != nil {
		t.Fatalf("ConfirmAmountAndContinue: %v", err)
	}
	if err := ctrl.SelectPaymentMethod(models.PaymentMethodOnline); err != nil {
		t.Fatalf("SelectPaymentMethod: %v", err)
	}
	if err := ctrl.InitiatePayment(context.Background(), false); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	_, observer, err := m.Get(ctrl.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got := observer.Observe("https://app.example/return?status=success"); got != gateway.ResultReported {
		t.Fatalf("observe = %v, want reported", got)
	}

	snap := ctrl.Snapshot()
	if snap.Step != models.StepOutcome || snap.Outcome != models.OutcomeSuccess {
		t.Fatalf("session not at success outcome: %+v", snap)
	}

	// a session reset rearms the observer for the next attempt
	ctrl.Reset()
	if err := ctrl.SelectAmount(5000); err != nil {
		t.Fatalf("SelectAmount after reset: %v", err)
	}
	if err := ctrl.ConfirmAmountAndContinue(context.Background()); err != nil {
		t.Fatalf("ConfirmAmountAndContinue after reset: %v", err)
	}
	if err := ctrl.SelectPaymentMethod(models.PaymentMethodOnline); err != nil {
		t.Fatalf("SelectPaymentMethod after reset: %v", err)
	}
	if err := ctrl.InitiatePayment(context.Background(), false); err != nil {
		t.Fatalf("InitiatePayment after reset: %v", err)
	}
	if got := observer.Observe("https://app.example/return?status=failure"); got != gateway.ResultReported {
		t.Fatalf("observe after reset = %v, want reported", got)
	}
	if got := ctrl.Snapshot().Outcome; got != models.OutcomeFailure {
		t.Fatalf("outcome after reset = %v, want %v", got, models.OutcomeFailure)
	}
}
