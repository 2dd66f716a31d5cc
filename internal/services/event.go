package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventhub/internal/models"
)

// DefaultEventListLimit bounds the public upcoming-events listing
const DefaultEventListLimit = 50

// EventStore reads and writes events
type EventStore interface {
	Create(ctx context.Context, req *models.EventCreateRequest, createdBy *int) (*models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	SearchUpcoming(ctx context.Context, from time.Time, filter models.EventFilter) ([]*models.Event, error)
	Update(ctx context.Context, id int, req *models.EventCreateRequest) (*models.Event, error)
	Delete(ctx context.Context, id int) error
}

// CatalogStore reads categories and locations
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListLocations(ctx context.Context) ([]*models.Location, error)
	GetOrCreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	GetOrCreateLocation(ctx context.Context, location *models.Location) (*models.Location, error)
}

// TicketStore lists a user's tickets
type TicketStore interface {
	ListByUser(ctx context.Context, userID int) ([]*models.Ticket, error)
}

// CatalogService serves events, categories, locations and tickets, and lets
// organizers manage their own events
type CatalogService struct {
	events  EventStore
	catalog CatalogStore
	tickets TicketStore
	now     func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(events EventStore, catalog CatalogStore, tickets TicketStore) *CatalogService {
	return &CatalogService{
		events:  events,
		catalog: catalog,
		tickets: tickets,
		now:     time.Now,
	}
}

// UpcomingEvents lists events that have not started yet, soonest first
func (s *CatalogService) UpcomingEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	if filter.Limit <= 0 || filter.Limit > DefaultEventListLimit {
		filter.Limit = DefaultEventListLimit
	}
	return s.events.SearchUpcoming(ctx, s.now(), filter)
}

// CreateEvent creates an event organized by the given user
func (s *CatalogService) CreateEvent(ctx context.Context, req *models.EventCreateRequest, organizer *models.User) (*models.Event, error) {
	if organizer == nil {
		return nil, models.ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	event, err := s.events.Create(ctx, req, &organizer.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("Event %d %q created by user %d", event.ID, event.Title, organizer.ID)
	return event, nil
}

// UpdateEvent replaces an event's details. Only staff and the event's organizer may update it.
func (s *CatalogService) UpdateEvent(ctx context.Context, id int, req *models.EventCreateRequest, user *models.User) (*models.Event, error) {
	if err := s.authorizeEventChange(ctx, id, user); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	event, err := s.events.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	log.Printf("Event %d updated by user %d", id, user.ID)
	return event, nil
}

// DeleteEvent removes an event with no tickets sold. Only staff and the event's organizer may delete it.
func (s *CatalogService) DeleteEvent(ctx context.Context, id int, user *models.User) error {
	if err := s.authorizeEventChange(ctx, id, user); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("Event %d deleted by user %d", id, user.ID)
	return nil
}

func (s *CatalogService) authorizeEventChange(ctx context.Context, id int, user *models.User) error {
	if user == nil {
		return models.ErrUnauthorized
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !event.CanBeManagedBy(user) {
		return fmt.Errorf("%w: event %d belongs to another organizer", models.ErrForbidden, id)
	}
	return nil
}

// GetEvent returns an event with its category and location
func (s *CatalogService) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	return s.events.GetByID(ctx, id)
}

// Categories lists event categories
func (s *CatalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// Locations lists venues
func (s *CatalogService) Locations(ctx context.Context) ([]*models.Location, error) {
	return s.catalog.ListLocations(ctx)
}

// UserTickets lists the tickets a user holds, newest first
func (s *CatalogService) UserTickets(ctx context.Context, userID int) ([]*models.Ticket, error) {
	return s.tickets.ListByUser(ctx, userID)
}

// SeedEvent creates an event under the named category and location, creating those as needed
func (s *CatalogService) SeedEvent(ctx context.Context, req *models.EventCreateRequest, category *models.Category, location *models.Location, organizerID int) (*models.Event, error) {
	if category != nil {
		c, err := s.catalog.GetOrCreateCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		req.CategoryID = &c.ID
	}
	if location != nil {
		l, err := s.catalog.GetOrCreateLocation(ctx, location)
		if err != nil {
			return nil, err
		}
		req.LocationID = &l.ID
	}
	return s.events.Create(ctx, req, &organizerID)
}
