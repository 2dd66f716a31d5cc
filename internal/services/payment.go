package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"eventhub/internal/models"
)

// PaymentStore reads payments and appends to their transaction log
type PaymentStore interface {
	GetByID(ctx context.Context, id int) (*models.Payment, error)
	AppendLog(ctx context.Context, paymentID int, payload json.RawMessage) (*models.TransactionLog, error)
	ListLogs(ctx context.Context, paymentID int) ([]*models.TransactionLog, error)
}

// PaymentService records provider callbacks against payments
type PaymentService struct {
	payments PaymentStore
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments PaymentStore) *PaymentService {
	return &PaymentService{payments: payments}
}

type webhookEnvelope struct {
	Kind      string          `json:"kind"`
	PaymentID int             `json:"payment_id"`
	Received  json.RawMessage `json:"received"`
}

// RecordWebhook appends a provider notification to the referenced payment's log.
// The body must be a JSON object carrying a payment_id.
func (s *PaymentService) RecordWebhook(ctx context.Context, body []byte) (*models.TransactionLog, error) {
	var ref struct {
		PaymentID int `json:"payment_id"`
	}
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, fmt.Errorf("%w: webhook body must be a JSON object: %v", models.ErrInvalidInput, err)
	}
	if ref.PaymentID <= 0 {
		return nil, fmt.Errorf("%w: payment_id is required", models.ErrInvalidInput)
	}

	if _, err := s.payments.GetByID(ctx, ref.PaymentID); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(webhookEnvelope{
		Kind:      models.LogKindWebhook,
		PaymentID: ref.PaymentID,
		Received:  json.RawMessage(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	entry, err := s.payments.AppendLog(ctx, ref.PaymentID, payload)
	if err != nil {
		return nil, err
	}
	log.Printf("Recorded webhook for payment %d", ref.PaymentID)
	return entry, nil
}

// History returns a payment together with its transaction log
func (s *PaymentService) History(ctx context.Context, paymentID int) (*models.Payment, []*models.TransactionLog, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.payments.ListLogs(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	return payment, logs, nil
}
