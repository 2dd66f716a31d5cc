package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("not allowed to manage this event")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateEntry   = errors.New("duplicate entry")

	// Validation
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 5")
	ErrInvalidReference = errors.New("alternate payment reference must contain exactly 26 digits")
	ErrAmountMismatch   = errors.New("payment amount does not match event price")
	ErrIntentMismatch   = errors.New("payment intent was created for a different purchase")

	// Policy rejections
	ErrPerUserLimitExceeded = errors.New("per-user ticket limit exceeded")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrAlreadySettled       = errors.New("payment already settled")

	// Event management
	ErrEventHasSales = errors.New("event has tickets sold")

	// Ticket lifecycle
	ErrInvalidTicketState = errors.New("ticket is not valid for this operation")

	// Uniqueness violations reported by the store
	ErrDuplicateReference = errors.New("duplicate ticket reference")
	ErrDuplicateSeat      = errors.New("duplicate seat for event")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrAmountMismatch) ||
		errors.Is(err, ErrIntentMismatch)
}
