package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/models"

	"github.com/shopspring/decimal"
)

// ReservationTx is the set of reads and writes the reservation engine performs
// inside a single transaction.
type ReservationTx interface {
	GetEvent(ctx context.Context, eventID int) (*models.Event, error)
	LockEvent(ctx context.Context, eventID int) (*models.Event, error)
	CountEventTickets(ctx context.Context, eventID int) (int, error)
	CountUserTickets(ctx context.Context, eventID, userID int) (int, error)
	EventSeatLabels(ctx context.Context, eventID int) ([]string, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	LockPayment(ctx context.Context, paymentID int) (*models.Payment, error)
	SettlePayment(ctx context.Context, paymentID, ticketID int, amount decimal.Decimal) error
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	AppendTransactionLog(ctx context.Context, entry *models.TransactionLog) error
}

// ReservationStore runs reservation work in Postgres transactions
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore creates a new reservation store
func NewReservationStore(db *sql.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

// WithinTx runs fn in a transaction that is committed when fn returns nil and
// rolled back otherwise.
func (s *ReservationStore) WithinTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgReservationTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MarkTicketUsed moves a valid ticket to used in a single conditional update,
// so concurrent scans of one reference cannot both succeed.
func (s *ReservationStore) MarkTicketUsed(ctx context.Context, reference string) (*models.Ticket, error) {
	query := `
		UPDATE tickets SET status = $2
		WHERE reference = $1 AND status = $3
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, reference, models.TicketUsed, models.TicketValid))
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to mark ticket used: %w", err)
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM tickets WHERE reference = $1`, reference).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket status: %w", err)
	}
	return nil, fmt.Errorf("%w: ticket is %s", models.ErrInvalidTicketState, status)
}

type pgReservationTx struct {
	tx *sql.Tx
}

func (t *pgReservationTx) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return t.getEvent(ctx, eventID, "")
}

func (t *pgReservationTx) LockEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return t.getEvent(ctx, eventID, " FOR UPDATE")
}

func (t *pgReservationTx) getEvent(ctx context.Context, eventID int, suffix string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1` + suffix

	event, err := scanEvent(t.tx.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (t *pgReservationTx) CountEventTickets(ctx context.Context, eventID int) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count event tickets: %w", err)
	}
	return count, nil
}

func (t *pgReservationTx) CountUserTickets(ctx context.Context, eventID, userID int) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND user_id = $2`, eventID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user tickets: %w", err)
	}
	return count, nil
}

func (t *pgReservationTx) EventSeatLabels(ctx context.Context, eventID int) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT seat_number FROM tickets WHERE event_id = $1 AND seat_number IS NOT NULL`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan seat label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (t *pgReservationTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (ticket_id, amount, paid, provider_session, event_id, buyer_id, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	if payment.Quantity == 0 {
		payment.Quantity = 1
	}

	err := t.tx.QueryRowContext(ctx, query,
		intPtrArg(payment.TicketID),
		payment.Amount,
		payment.Paid,
		stringPtrArg(payment.ProviderSession),
		intPtrArg(payment.EventID),
		intPtrArg(payment.BuyerID),
		payment.Quantity,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (t *pgReservationTx) LockPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	payment, err := scanPayment(t.tx.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return payment, nil
}

func (t *pgReservationTx) SettlePayment(ctx context.Context, paymentID, ticketID int, amount decimal.Decimal) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE payments SET paid = TRUE, ticket_id = $2, amount = $3, quantity = 1 WHERE id = $1 AND paid = FALSE`,
		paymentID, ticketID, amount)
	if err != nil {
		return fmt.Errorf("failed to settle payment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return models.ErrAlreadySettled
	}
	return nil
}

// CreateTicket inserts under a savepoint so a uniqueness violation leaves the
// surrounding transaction usable for a retry.
func (t *pgReservationTx) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT ticket_insert"); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	query := `
		INSERT INTO tickets (user_id, event_id, reference, seat_number, qr_code, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := t.tx.QueryRowContext(ctx, query,
		ticket.UserID,
		ticket.EventID,
		ticket.Reference,
		stringPtrArg(ticket.SeatNumber),
		ticket.QRCode,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT ticket_insert"); rbErr != nil {
			return fmt.Errorf("failed to roll back ticket insert: %w", rbErr)
		}
		return mapTicketInsertError(err)
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT ticket_insert"); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *pgReservationTx) AppendTransactionLog(ctx context.Context, entry *models.TransactionLog) error {
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO transaction_logs (payment_id, payload) VALUES ($1, $2) RETURNING id, created_at`,
		intPtrArg(entry.PaymentID), string(entry.Payload),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}
