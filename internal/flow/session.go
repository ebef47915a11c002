package flow

import (
	"time"

	"github.com/google/uuid"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
)

// Session is the single mutable record driving one donation attempt. It is
// owned exclusively by a Controller and never persisted; a reset discards all
// fields and returns the attempt to amount selection.
type Session struct {
	ID               string
	UserID           string
	Step             models.Step
	AmountCents      int64
	DonorDetails     *models.DonorDetails
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	Outcome          models.Outcome
	LastActivity     time.Time
	CreatedAt        time.Time
}

func NewSession(userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Step:         models.StepAmountSelection,
		LastActivity: now,
		CreatedAt:    now,
	}
}

func (s *Session) snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:               s.ID,
		Step:             s.Step,
		AmountCents:      s.AmountCents,
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		Outcome:          s.Outcome,
	}
	if s.DonorDetails != nil {
		details := *s.DonorDetails
		snap.DonorDetails = &details
	}
	return snap
}
