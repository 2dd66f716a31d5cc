package models

import (
	"strings"
	"time"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketValid   TicketStatus = "valid"
	TicketUsed    TicketStatus = "used"
	TicketExpired TicketStatus = "expired"
)

// QRPayloadPrefix is prepended to a ticket reference in its QR code.
const QRPayloadPrefix = "ticket:"

// Ticket represents an individual ticket
type Ticket struct {
	ID         int          `json:"id" db:"id"`
	UserID     int          `json:"user_id" db:"user_id"`
	EventID    int          `json:"event_id" db:"event_id"`
	Reference  string       `json:"reference" db:"reference"`
	SeatNumber *string      `json:"seat_number" db:"seat_number"`
	QRCode     string       `json:"qr_code" db:"qr_code"`
	Status     TicketStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`

	// Related data
	Event *Event `json:"event,omitempty"`
}

// QRPayload returns the string encoded into the ticket's QR code
func (t *Ticket) QRPayload() string {
	return QRPayloadPrefix + t.Reference
}

// Seat returns the seat label or an empty string
func (t *Ticket) Seat() string {
	if t.SeatNumber == nil {
		return ""
	}
	return *t.SeatNumber
}

// CanBeUsed returns true if the ticket can be scanned in
func (t *Ticket) CanBeUsed() bool {
	return t.Status == TicketValid
}

// ParseScannedReference accepts either a bare reference or a QR payload.
func ParseScannedReference(scanned string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanned), QRPayloadPrefix))
}

// IsValid reports whether the status is a known ticket status
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketValid, TicketUsed, TicketExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether status may move to next. Tickets only move forward.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	return s == TicketValid && (next == TicketUsed || next == TicketExpired)
}
