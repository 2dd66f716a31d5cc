package models

import (
	"fmt"
	"strings"
)

// Purchase bounds
const (
	MinTicketsPerPurchase = 1
	MaxTicketsPerUser     = 5
	AltReferenceDigits    = 26
)

// PurchaseIntentRequest asks for an unsettled payment covering quantity tickets
type PurchaseIntentRequest struct {
	EventID  int `json:"event_id"`
	Quantity int `json:"quantity"`
	BuyerID  int `json:"-"`
}

// ConfirmPurchaseRequest settles a payment intent and mints its tickets
type ConfirmPurchaseRequest struct {
	PaymentID    int    `json:"payment_id"`
	EventID      int    `json:"event_id"`
	Quantity     int    `json:"quantity"`
	BuyerName    string `json:"buyer_name"`
	BuyerEmail   string `json:"buyer_email"`
	AltReference string `json:"alt_reference,omitempty"`
	BuyerID      int    `json:"-"`
}

// BookRequest is the single-step purchase of one ticket
type BookRequest struct {
	EventID    int    `json:"event_id"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerID    int    `json:"-"`
}

// ScanRequest carries a scanned reference or QR payload
type ScanRequest struct {
	Reference string `json:"reference"`
}

// Validate validates the intent request
func (req *PurchaseIntentRequest) Validate() error {
	if req.EventID <= 0 {
		return fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	if req.BuyerID <= 0 {
		return fmt.Errorf("%w: buyer is required", ErrInvalidInput)
	}
	return validateQuantity(req.Quantity)
}

// Validate validates the confirmation request and normalizes its alternate reference
func (req *ConfirmPurchaseRequest) Validate() error {
	if req.PaymentID <= 0 {
		return fmt.Errorf("%w: payment_id is required", ErrInvalidInput)
	}
	if req.EventID <= 0 {
		return fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	if req.BuyerID <= 0 {
		return fmt.Errorf("%w: buyer is required", ErrInvalidInput)
	}
	if err := validateQuantity(req.Quantity); err != nil {
		return err
	}
	if req.BuyerEmail != "" {
		if err := validateEmail(strings.TrimSpace(req.BuyerEmail)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		req.BuyerEmail = strings.TrimSpace(req.BuyerEmail)
	}
	if len(req.BuyerName) > 255 {
		return fmt.Errorf("%w: buyer_name must be less than 255 characters", ErrInvalidInput)
	}

	ref, err := NormalizeAltReference(req.AltReference)
	if err != nil {
		return err
	}
	req.AltReference = ref
	return nil
}

// Validate validates the single-step booking request
func (req *BookRequest) Validate() error {
	if req.EventID <= 0 {
		return fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	if req.BuyerID <= 0 {
		return fmt.Errorf("%w: buyer is required", ErrInvalidInput)
	}
	if req.BuyerEmail != "" {
		if err := validateEmail(strings.TrimSpace(req.BuyerEmail)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// Validate validates the scan request
func (req *ScanRequest) Validate() error {
	if ParseScannedReference(req.Reference) == "" {
		return fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < MinTicketsPerPurchase || quantity > MaxTicketsPerUser {
		return ErrInvalidQuantity
	}
	return nil
}

// NormalizeAltReference strips every non-digit character. An empty input means no
// reference was supplied; anything else must leave exactly 26 digits.
func NormalizeAltReference(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) != AltReferenceDigits {
		return "", ErrInvalidReference
	}
	return digits, nil
}
