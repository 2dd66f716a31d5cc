package services

import (
	"context"
	"fmt"

	"eventhub/internal/models"
	"eventhub/internal/repositories"
)

// Capacity is the number of tickets an event can still issue
type Capacity struct {
	Unbounded bool `json:"unbounded"`
	Remaining int  `json:"remaining"`
}

// UnboundedCapacity is the capacity of an event with no limit
func UnboundedCapacity() Capacity {
	return Capacity{Unbounded: true}
}

// BoundedCapacity returns a capacity with n tickets left. Negative values are clamped to zero.
func BoundedCapacity(n int) Capacity {
	if n < 0 {
		n = 0
	}
	return Capacity{Remaining: n}
}

// Allows reports whether n more tickets fit
func (c Capacity) Allows(n int) bool {
	return c.Unbounded || c.Remaining >= n
}

// RemainingCapacity derives remaining capacity from an event and its sold count
func RemainingCapacity(event *models.Event, sold int) Capacity {
	if event.IsUnbounded() {
		return UnboundedCapacity()
	}
	return BoundedCapacity(event.Capacity - sold)
}

// LedgerReading is a point-in-time view of an event's ticket sales
type LedgerReading struct {
	EventID  int      `json:"event_id"`
	Capacity int      `json:"capacity"`
	Sold     int      `json:"sold"`
	Left     Capacity `json:"left"`
}

// ReadLedger reads sold tickets for event inside tx. Callers deciding on an
// allocation must hold the event lock in the same tx.
func ReadLedger(ctx context.Context, tx repositories.ReservationTx, event *models.Event) (LedgerReading, error) {
	sold, err := tx.CountEventTickets(ctx, event.ID)
	if err != nil {
		return LedgerReading{}, fmt.Errorf("failed to read capacity ledger: %w", err)
	}

	return LedgerReading{
		EventID:  event.ID,
		Capacity: event.Capacity,
		Sold:     sold,
		Left:     RemainingCapacity(event, sold),
	}, nil
}
