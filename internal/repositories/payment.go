package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eventhub/internal/models"
)

// PaymentRepository handles payment reads and transaction log writes outside the reservation flow
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int) (*models.Payment, error) {
	payment, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// AppendLog appends a transaction log entry for a payment
func (r *PaymentRepository) AppendLog(ctx context.Context, paymentID int, payload json.RawMessage) (*models.TransactionLog, error) {
	entry := &models.TransactionLog{PaymentID: &paymentID, Payload: payload}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transaction_logs (payment_id, payload) VALUES ($1, $2) RETURNING id, created_at`,
		paymentID, string(payload),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction log: %w", err)
	}
	return entry, nil
}

// ListLogs returns a payment's transaction log, oldest first
func (r *PaymentRepository) ListLogs(ctx context.Context, paymentID int) ([]*models.TransactionLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, payment_id, payload, created_at FROM transaction_logs WHERE payment_id = $1 ORDER BY id`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.TransactionLog
	for rows.Next() {
		entry := &models.TransactionLog{}
		var pid sql.NullInt64
		var payload []byte
		if err := rows.Scan(&entry.ID, &pid, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction log: %w", err)
		}
		entry.PaymentID = nullIntPtr(pid)
		entry.Payload = json.RawMessage(payload)
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
