package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"
)

// EventRepository handles event data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventWithRelations = `SELECT ` + eventColumns + `,
		COALESCE(c.name, ''), COALESCE(c.image_url, ''),
		COALESCE(l.name, ''), COALESCE(l.address, ''), COALESCE(l.capacity, 0)
	FROM events e
	LEFT JOIN event_categories c ON c.id = e.category_id
	LEFT JOIN locations l ON l.id = e.location_id`

func scanEventWithRelations(row rowScanner) (*models.Event, error) {
	var category models.Category
	var location models.Location

	event, err := scanEvent(row,
		&category.Name, &category.ImageURL,
		&location.Name, &location.Address, &location.Capacity,
	)
	if err != nil {
		return nil, err
	}

	if event.CategoryID != nil {
		category.ID = *event.CategoryID
		event.Category = &category
	}
	if event.LocationID != nil {
		location.ID = *event.LocationID
		event.Location = &location
	}
	return event, nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEventWithRelations(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Create creates a new event owned by createdBy
func (r *EventRepository) Create(ctx context.Context, req *models.EventCreateRequest, createdBy *int) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO events (title, description, category_id, location_id, date, price, capacity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		req.Title,
		req.Description,
		intPtrArg(req.CategoryID),
		intPtrArg(req.LocationID),
		req.Date,
		req.Price,
		req.Capacity,
		intPtrArg(createdBy),
	).Scan(&id)
	if err != nil {
		return nil, mapEventWriteError(err, "create")
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves an event with its category and location
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := scanEventWithRelations(r.db.QueryRowContext(ctx, eventWithRelations+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListUpcoming returns events dated at or after from, soonest first. A limit of 0 returns all.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Event, error) {
	return r.SearchUpcoming(ctx, from, models.EventFilter{Limit: limit})
}

// SearchUpcoming returns events dated at or after from that match filter, soonest first
func (r *EventRepository) SearchUpcoming(ctx context.Context, from time.Time, filter models.EventFilter) ([]*models.Event, error) {
	query := eventWithRelations + ` WHERE e.date >= $1`
	args := []any{from}

	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND e.category_id = $%d", len(args))
	}

	query += ` ORDER BY e.date ASC, e.id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.queryEvents(ctx, query, args...)
}

// Update replaces an event's editable fields. A bounded capacity cannot drop
// below the number of tickets already sold.
func (r *EventRepository) Update(ctx context.Context, id int, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sold, err := lockEventForChange(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.Capacity > 0 && req.Capacity < sold {
		return nil, fmt.Errorf("%w: capacity %d is below the %d tickets already sold",
			models.ErrInvalidInput, req.Capacity, sold)
	}

	query := `
		UPDATE events
		SET title = $2, description = $3, category_id = $4, location_id = $5,
			date = $6, price = $7, capacity = $8
		WHERE id = $1`

	_, err = tx.ExecContext(ctx, query,
		id,
		req.Title,
		req.Description,
		intPtrArg(req.CategoryID),
		intPtrArg(req.LocationID),
		req.Date,
		req.Price,
		req.Capacity,
	)
	if err != nil {
		return nil, mapEventWriteError(err, "update")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event that has no tickets sold
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sold, err := lockEventForChange(ctx, tx, id)
	if err != nil {
		return err
	}
	if sold > 0 {
		return fmt.Errorf("%w: %d tickets sold", models.ErrEventHasSales, sold)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockEventForChange takes the same row lock as a purchase confirmation and
// returns the event's sold count.
func lockEventForChange(ctx context.Context, tx *sql.Tx, id int) (int, error) {
	var locked int
	err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock event: %w", err)
	}

	var sold int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, id).Scan(&sold); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return sold, nil
}

// ListTicketedByUser returns the distinct events a user holds tickets for
func (r *EventRepository) ListTicketedByUser(ctx context.Context, userID int) ([]*models.Event, error) {
	query := eventWithRelations + `
		WHERE e.id IN (SELECT DISTINCT event_id FROM tickets WHERE user_id = $1)
		ORDER BY e.date ASC`
	return r.queryEvents(ctx, query, userID)
}

// ListAttendedByUser returns the distinct events in a user's participation history
func (r *EventRepository) ListAttendedByUser(ctx context.Context, userID int) ([]*models.Event, error) {
	query := eventWithRelations + `
		WHERE e.id IN (SELECT DISTINCT event_id FROM participation_history WHERE user_id = $1)
		ORDER BY e.date ASC`
	return r.queryEvents(ctx, query, userID)
}

// SoldCount returns the number of tickets issued for an event
func (r *EventRepository) SoldCount(ctx context.Context, eventID int) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}
