package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/models"
)

// TicketRepository handles ticket reads and post-issue updates
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// GetByReference retrieves a ticket by its reference
func (r *TicketRepository) GetByReference(ctx context.Context, reference string) (*models.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE reference = $1`, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// ListByUser returns a user's tickets, newest first
func (r *TicketRepository) ListByUser(ctx context.Context, userID int) ([]*models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// UpdateQRCode records where a ticket's QR image was stored
func (r *TicketRepository) UpdateQRCode(ctx context.Context, ticketID int, qrCode string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tickets SET qr_code = $2 WHERE id = $1`, ticketID, qrCode)
	if err != nil {
		return fmt.Errorf("failed to update qr code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}
