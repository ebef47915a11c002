package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
)

// Backend is the slice of the external donation API the flow depends on.
type Backend interface {
	HasDonorCertificateInfo(ctx context.Context, userID string) (bool, error)
	CreateDonorCertificateInfo(ctx context.Context, userID string, details models.DonorDetails) error
	CreateOnlineDonation(ctx context.Context, userID string, amountCents int64, isAnonymous bool) (string, error)
	CreateManualDonation(ctx context.Context, userID string, amountCents int64, isAnonymous bool) (string, error)
}

// Controller owns one donation session and exposes the only legal
// transitions. Backend calls run outside the lock; each is tagged with the
// session generation at call time so a response landing after Reset is
// discarded instead of mutating the fresh session.
type Controller struct {
	mu           sync.Mutex
	session      *Session
	busy         bool
	generation   uint64
	backend      Backend
	countdownTTL time.Duration
	countdown    *time.Timer
	onOutcome    func(models.SessionSnapshot)
	onReset      func()
}

func NewController(userID string, backend Backend, countdownTTL time.Duration) *Controller {
	return &Controller{
		session:      NewSession(userID),
		backend:      backend,
		countdownTTL: countdownTTL,
	}
}

// SetHooks registers observers for terminal outcomes and resets. Hooks run
// without the controller lock held.
func (c *Controller) SetHooks(onOutcome func(models.SessionSnapshot), onReset func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOutcome = onOutcome
	c.onReset = onReset
}

func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.UserID
}

func (c *Controller) Snapshot() models.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.snapshot()
}

// Touch records user activity for the inactivity guard.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.LastActivity = time.Now().UTC()
}

func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.LastActivity
}

// SelectAmount sets the donation amount while the session is still on amount
// selection.
func (c *Controller) SelectAmount(amountCents int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.session.Step != models.StepAmountSelection {
		return ErrInvalidTransition
	}
	if amountCents <= 0 {
		return &ValidationError{Fields: []string{"amount"}, Reason: "amount must be greater than zero"}
	}
	c.session.AmountCents = amountCents
	c.session.LastActivity = time.Now().UTC()
	return nil
}

// ConfirmAmountAndContinue leaves amount selection. Donors with registered
// certificate info skip the donor-details step entirely.
func (c *Controller) ConfirmAmountAndContinue(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.session.Step != models.StepAmountSelection {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if c.session.AmountCents <= 0 {
		c.mu.Unlock()
		return &ValidationError{Fields: []string{"amount"}, Reason: "amount is required before continuing"}
	}
	c.busy = true
	gen := c.generation
	userID := c.session.UserID
	c.mu.Unlock()

	hasInfo, err := c.backend.HasDonorCertificateInfo(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.generation != gen {
		return ErrSessionReset
	}
	if err != nil {
		return &RemoteError{Op: "donor_certificate_lookup", Err: err}
	}
	if hasInfo {
		c.session.Step = models.StepPaymentMethodSelection
	} else {
		c.session.Step = models.StepDonorDetails
	}
	c.session.LastActivity = time.Now().UTC()
	return nil
}

// SubmitDonorDetails stores the donor's certificate info and registers it
// with the backend. On a failed call the step does not advance and the same
// submission may be retried.
func (c *Controller) SubmitDonorDetails(ctx context.Context, details models.DonorDetails) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.session.Step != models.StepDonorDetails {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if missing := details.MissingFields(); len(missing) > 0 {
		c.mu.Unlock()
		return &ValidationError{Fields: missing, Reason: "all donor fields are required"}
	}
	c.busy = true
	gen := c.generation
	userID := c.session.UserID
	c.mu.Unlock()

	err := c.backend.CreateDonorCertificateInfo(ctx, userID, details)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.generation != gen {
		return ErrSessionReset
	}
	if err != nil {
		return &RemoteError{Op: "donor_certificate_create", Err: err}
	}
	c.session.DonorDetails = &details
	c.session.Step = models.StepPaymentMethodSelection
	c.session.LastActivity = time.Now().UTC()
	return nil
}

// SelectPaymentMethod records the chosen payment path.
func (c *Controller) SelectPaymentMethod(method models.PaymentMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.session.Step != models.StepPaymentMethodSelection {
		return ErrInvalidTransition
	}
	if !method.Valid() {
		return &ValidationError{Fields: []string{"paymentMethod"}, Reason: "unknown payment method"}
	}
	c.session.PaymentMethod = method
	c.session.LastActivity = time.Now().UTC()
	return nil
}

// InitiatePayment creates the donation on the backend and moves to payment
// processing. The online path stores the gateway redirect URL as the payment
// reference; the manual path stores the donation reference id.
func (c *Controller) InitiatePayment(ctx context.Context, isAnonymous bool) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.session.Step != models.StepPaymentMethodSelection {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	method := c.session.PaymentMethod
	if !method.Valid() {
		c.mu.Unlock()
		return &ValidationError{Fields: []string{"paymentMethod"}, Reason: "payment method not selected"}
	}
	c.busy = true
	gen := c.generation
	userID := c.session.UserID
	amountCents := c.session.AmountCents
	c.mu.Unlock()

	var reference string
	var err error
	if method == models.PaymentMethodOnline {
		reference, err = c.backend.CreateOnlineDonation(ctx, userID, amountCents, isAnonymous)
	} else {
		reference, err = c.backend.CreateManualDonation(ctx, userID, amountCents, isAnonymous)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.generation != gen {
		return ErrSessionReset
	}
	if err != nil {
		return &RemoteError{Op: "donation_create", Err: err}
	}
	if reference == "" {
		return &RemoteError{Op: "donation_create", Err: errors.New("backend returned an empty payment reference")}
	}
	c.session.PaymentReference = reference
	c.session.Step = models.StepPaymentProcessing
	c.session.LastActivity = time.Now().UTC()
	return nil
}

// ReportPaymentOutcome sets the terminal outcome and moves the session to the
// outcome step. An outcome countdown is armed so the flow returns to amount
// selection shortly after the result has been shown.
func (c *Controller) ReportPaymentOutcome(outcome models.Outcome) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.session.Step != models.StepPaymentProcessing {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if !outcome.Valid() {
		c.mu.Unlock()
		return &ValidationError{Fields: []string{"outcome"}, Reason: "unknown payment outcome"}
	}
	c.session.Outcome = outcome
	c.session.Step = models.StepOutcome
	c.session.LastActivity = time.Now().UTC()
	if c.countdownTTL > 0 {
		c.countdown = time.AfterFunc(c.countdownTTL, c.Reset)
	}
	snap := c.session.snapshot()
	hook := c.onOutcome
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}

// Reset discards the session and starts a fresh attempt under the same id.
// It is the only transition with no prerequisite: the inactivity guard and
// the outcome countdown both rely on it succeeding from any state. A reset
// bumps the generation so responses of in-flight backend calls are dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.generation++
	old := c.session
	fresh := NewSession(old.UserID)
	fresh.ID = old.ID
	c.session = fresh
	hook := c.onReset
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
}
