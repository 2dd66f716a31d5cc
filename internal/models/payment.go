package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a purchase intent or a settled per-ticket payment
type Payment struct {
	ID              int             `json:"id" db:"id"`
	TicketID        *int            `json:"ticket_id" db:"ticket_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Paid            bool            `json:"paid" db:"paid"`
	ProviderSession *string         `json:"provider_session,omitempty" db:"provider_session"`
	EventID         *int            `json:"event_id,omitempty" db:"event_id"`
	BuyerID         *int            `json:"buyer_id,omitempty" db:"buyer_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// TransactionLog is an append-only audit record for a payment
type TransactionLog struct {
	ID        int             `json:"id" db:"id"`
	PaymentID *int            `json:"payment_id" db:"payment_id"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ConfirmationLogPayload is the transaction log body written when a payment is confirmed
type ConfirmationLogPayload struct {
	Kind         string   `json:"kind"`
	PaymentID    int      `json:"payment_id"`
	BuyerID      int      `json:"buyer_id"`
	EventID      int      `json:"event_id"`
	Quantity     int      `json:"quantity"`
	AltReference string   `json:"alt_reference,omitempty"`
	References   []string `json:"references"`
	Total        string   `json:"total"`
}

// Transaction log kinds
const (
	LogKindConfirmation = "confirmation"
	LogKindWebhook      = "webhook"
)

// CoversPurchase reports whether the intent was created for this buyer, event and quantity
func (p *Payment) CoversPurchase(buyerID, eventID, quantity int) bool {
	return p.BuyerID != nil && *p.BuyerID == buyerID &&
		p.EventID != nil && *p.EventID == eventID &&
		p.Quantity == quantity
}

// Session returns the provider session token or an empty string
func (p *Payment) Session() string {
	if p.ProviderSession == nil {
		return ""
	}
	return *p.ProviderSession
}
