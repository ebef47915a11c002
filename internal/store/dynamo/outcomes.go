package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
)

// outcomeRecord is the audit row written for each terminal payment outcome.
// The donation session itself stays in memory only; this trail exists so
// support can answer "what happened to my donation" after the session is
// gone.
type outcomeRecord struct {
	SessionID        string `dynamodbav:"sessionId"`
	UserID           string `dynamodbav:"userId"`
	AmountCents      int64  `dynamodbav:"amountCents"`
	PaymentMethod    string `dynamodbav:"paymentMethod"`
	PaymentReference string `dynamodbav:"paymentReference"`
	Outcome          string `dynamodbav:"outcome"`
	CreatedAt        string `dynamodbav:"createdAt"`
}

type OutcomeRecorder struct {
	store *Store
}

func NewOutcomeRecorder(store *Store) *OutcomeRecorder {
	return &OutcomeRecorder{store: store}
}

func (r *OutcomeRecorder) RecordOutcome(ctx context.Context, userID string, snap models.SessionSnapshot) error {
	now := time.Now().UTC().Format(time.RFC3339)
	record := outcomeRecord{
		SessionID:        snap.ID,
		UserID:           userID,
		AmountCents:      snap.AmountCents,
		PaymentMethod:    snap.PaymentMethod.String(),
		PaymentReference: snap.PaymentReference,
		Outcome:          snap.Outcome.String(),
		CreatedAt:        now,
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return err
	}
	item["PK"] = S("FLOW#" + snap.ID)
	item["SK"] = S("OUTCOME#" + now)

	return r.store.PutItem(ctx, item)
}
