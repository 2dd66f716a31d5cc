package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a ticketed event
type Event struct {
	ID          int             `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	CategoryID  *int            `json:"category_id" db:"category_id"`
	LocationID  *int            `json:"location_id" db:"location_id"`
	Date        time.Time       `json:"date" db:"date"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	Capacity    int             `json:"capacity" db:"capacity"` // 0 means unbounded
	CreatedBy   *int            `json:"created_by" db:"created_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	// Related data
	Category *Category `json:"category,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// EventCreateRequest represents the data needed to create a new event
type EventCreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CategoryID  *int            `json:"category_id"`
	LocationID  *int            `json:"location_id"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	Capacity    int             `json:"capacity"`
}

// EventFilter narrows the upcoming-events listing. Zero values match everything.
type EventFilter struct {
	CategoryID int
	Limit      int
}

// IsUnbounded reports whether the event has no capacity limit.
func (e *Event) IsUnbounded() bool {
	return e.Capacity == 0
}

// IsUpcoming reports whether the event takes place at or after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.Date.Before(now)
}

// CanBeManagedBy reports whether user may edit or delete the event: staff, or
// the organizer who created it.
func (e *Event) CanBeManagedBy(user *User) bool {
	if user == nil {
		return false
	}
	if user.IsStaff {
		return true
	}
	return e.CreatedBy != nil && *e.CreatedBy == user.ID
}

// CategoryName returns the loaded category's name or an empty string.
func (e *Event) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}

// Validate validates the event data
func (e *Event) Validate() error {
	return validateEventFields(e.Title, e.Date, e.Price, e.Capacity)
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	return validateEventFields(req.Title, req.Date, req.Price, req.Capacity)
}

func validateEventFields(title string, date time.Time, price decimal.Decimal, capacity int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("event title is required")
	}
	if len(title) > 200 {
		return errors.New("event title must be less than 200 characters")
	}
	if date.IsZero() {
		return errors.New("event date is required")
	}
	if price.IsNegative() {
		return errors.New("event price cannot be negative")
	}
	if !price.Equal(price.Round(2)) {
		return errors.New("event price must have at most 2 decimal places")
	}
	if capacity < 0 {
		return errors.New("event capacity cannot be negative")
	}
	return nil
}
