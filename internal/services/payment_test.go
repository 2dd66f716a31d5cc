package services

import (
	"context"
	"encoding/json"
	"testing"

	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPaymentStore struct {
	payments map[int]*models.Payment
	logs     map[int][]*models.TransactionLog
}

func (m *memPaymentStore) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	return p, nil
}

func (m *memPaymentStore) AppendLog(ctx context.Context, paymentID int, payload json.RawMessage) (*models.TransactionLog, error) {
	entry := &models.TransactionLog{ID: len(m.logs[paymentID]) + 1, PaymentID: &paymentID, Payload: payload}
	m.logs[paymentID] = append(m.logs[paymentID], entry)
	return entry, nil
}

func (m *memPaymentStore) ListLogs(ctx context.Context, paymentID int) ([]*models.TransactionLog, error) {
	return m.logs[paymentID], nil
}

func TestPaymentService_RecordWebhook(t *testing.T) {
	store := &memPaymentStore{
		payments: map[int]*models.Payment{5: {ID: 5}},
		logs:     map[int][]*models.TransactionLog{},
	}
	svc := NewPaymentService(store)
	ctx := context.Background()

	entry, err := svc.RecordWebhook(ctx, []byte(`{"payment_id":5,"status":"succeeded"}`))
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(entry.Payload, &envelope))
	assert.Equal(t, models.LogKindWebhook, envelope["kind"])
	assert.Equal(t, "succeeded", envelope["received"].(map[string]any)["status"])

	payment, logs, err := svc.History(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, payment.ID)
	assert.Len(t, logs, 1)
}

func TestPaymentService_RecordWebhookErrors(t *testing.T) {
	svc := NewPaymentService(&memPaymentStore{payments: map[int]*models.Payment{}, logs: map[int][]*models.TransactionLog{}})
	ctx := context.Background()

	tests := []struct {
		name   string
		body   string
		target error
	}{
		{name: "not json", body: `payment=5`, target: models.ErrInvalidInput},
		{name: "missing payment id", body: `{"status":"ok"}`, target: models.ErrInvalidInput},
		{name: "unknown payment", body: `{"payment_id":77}`, target: models.ErrPaymentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordWebhook(ctx, []byte(tt.body))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
