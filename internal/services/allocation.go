package services

import (
	"fmt"

	"eventhub/internal/models"
)

// RejectionReason is the machine-readable reason a purchase was refused
type RejectionReason string

const (
	ReasonInvalidQuantity      RejectionReason = "invalid_quantity"
	ReasonPerUserLimitExceeded RejectionReason = "per_user_limit_exceeded"
	ReasonInsufficientCapacity RejectionReason = "insufficient_capacity"
	ReasonAlreadySettled       RejectionReason = "already_settled"
)

// RejectionError reports a refused purchase together with the counters behind it
type RejectionError struct {
	Reason    RejectionReason
	Requested int
	Owned     int
	Capacity  Capacity
	// Conflict is set when the seats were taken by a concurrent purchase
	Conflict bool
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonInvalidQuantity:
		return fmt.Sprintf("quantity must be between %d and %d, got %d",
			models.MinTicketsPerPurchase, models.MaxTicketsPerUser, e.Requested)
	case ReasonPerUserLimitExceeded:
		return fmt.Sprintf("you already own %d tickets for this event, the limit is %d",
			e.Owned, models.MaxTicketsPerUser)
	case ReasonInsufficientCapacity:
		if e.Conflict {
			return "tickets were taken by a concurrent purchase, please try again"
		}
		return fmt.Sprintf("only %d tickets remaining, %d requested", e.Capacity.Remaining, e.Requested)
	case ReasonAlreadySettled:
		return "payment already settled"
	}
	return string(e.Reason)
}

// Unwrap maps the reason onto the matching sentinel so callers can use errors.Is
func (e *RejectionError) Unwrap() error {
	switch e.Reason {
	case ReasonInvalidQuantity:
		return models.ErrInvalidQuantity
	case ReasonPerUserLimitExceeded:
		return models.ErrPerUserLimitExceeded
	case ReasonInsufficientCapacity:
		return models.ErrInsufficientCapacity
	case ReasonAlreadySettled:
		return models.ErrAlreadySettled
	}
	return nil
}

// Decision is the outcome of the allocation policy
type Decision struct {
	Admitted  bool
	Reason    RejectionReason
	Requested int
	Owned     int
	Capacity  Capacity
}

// Err returns nil for an admitted decision and a *RejectionError otherwise
func (d Decision) Err() error {
	if d.Admitted {
		return nil
	}
	return &RejectionError{
		Reason:    d.Reason,
		Requested: d.Requested,
		Owned:     d.Owned,
		Capacity:  d.Capacity,
	}
}

// DecideAllocation applies the purchase rules in order: quantity bounds, the
// per-user cap, then remaining capacity.
func DecideAllocation(remaining Capacity, owned, requested int) Decision {
	d := Decision{Requested: requested, Owned: owned, Capacity: remaining}

	switch {
	case requested < models.MinTicketsPerPurchase || requested > models.MaxTicketsPerUser:
		d.Reason = ReasonInvalidQuantity
	case owned+requested > models.MaxTicketsPerUser:
		d.Reason = ReasonPerUserLimitExceeded
	case !remaining.Allows(requested):
		d.Reason = ReasonInsufficientCapacity
	default:
		d.Admitted = true
	}
	return d
}
