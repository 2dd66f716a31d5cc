package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/models"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Unique constraint names from the tickets migration
const (
	ticketReferenceConstraint = "tickets_reference_key"
	ticketSeatConstraint      = "tickets_event_seat_key"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const eventColumns = `e.id, e.title, e.description, e.category_id, e.location_id, e.date, e.price,
		e.image_url, e.capacity, e.created_by, e.created_at`

const ticketColumns = `id, user_id, event_id, reference, seat_number, qr_code, status, created_at`

const paymentColumns = `id, ticket_id, amount, paid, provider_session, event_id, buyer_id, quantity, created_at`

func scanEvent(row rowScanner, extra ...any) (*models.Event, error) {
	event := &models.Event{}
	var categoryID, locationID, createdBy sql.NullInt64

	dest := []any{
		&event.ID,
		&event.Title,
		&event.Description,
		&categoryID,
		&locationID,
		&event.Date,
		&event.Price,
		&event.ImageURL,
		&event.Capacity,
		&createdBy,
		&event.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	event.CategoryID = nullIntPtr(categoryID)
	event.LocationID = nullIntPtr(locationID)
	event.CreatedBy = nullIntPtr(createdBy)
	return event, nil
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var seat sql.NullString
	var status string

	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.EventID,
		&ticket.Reference,
		&seat,
		&ticket.QRCode,
		&status,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if seat.Valid {
		s := seat.String
		ticket.SeatNumber = &s
	}
	ticket.Status = models.TicketStatus(status)
	return ticket, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	payment := &models.Payment{}
	var ticketID, eventID, buyerID sql.NullInt64
	var session sql.NullString

	err := row.Scan(
		&payment.ID,
		&ticketID,
		&payment.Amount,
		&payment.Paid,
		&session,
		&eventID,
		&buyerID,
		&payment.Quantity,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.TicketID = nullIntPtr(ticketID)
	payment.EventID = nullIntPtr(eventID)
	payment.BuyerID = nullIntPtr(buyerID)
	if session.Valid {
		s := session.String
		payment.ProviderSession = &s
	}
	return payment, nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func intPtrArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// mapTicketInsertError translates unique violations on the tickets table into sentinels.
func mapTicketInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case ticketReferenceConstraint:
			return models.ErrDuplicateReference
		case ticketSeatConstraint:
			return models.ErrDuplicateSeat
		}
		return fmt.Errorf("%w: %s", models.ErrDuplicateEntry, pqErr.Constraint)
	}
	return fmt.Errorf("failed to create ticket: %w", err)
}

// mapEventWriteError reports a dangling category or location as invalid input
func mapEventWriteError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: unknown category or location", models.ErrInvalidInput)
	}
	return fmt.Errorf("failed to %s event: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
