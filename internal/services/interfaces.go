package services

import (
	"context"

	"eventhub/internal/models"
)

// ReservationServiceInterface defines the purchase and admission operations
type ReservationServiceInterface interface {
	CreateIntent(ctx context.Context, req *models.PurchaseIntentRequest) (*IntentResult, error)
	Confirm(ctx context.Context, req *models.ConfirmPurchaseRequest) (*ConfirmResult, error)
	Book(ctx context.Context, req *models.BookRequest) (*ConfirmResult, error)
	Scan(ctx context.Context, scanned string) (*models.Ticket, error)
	Availability(ctx context.Context, eventID int) (LedgerReading, error)
}

// RecommendationServiceInterface defines recommendation lookups
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, userID int) ([]*models.Event, error)
}

// CatalogServiceInterface defines the public catalog reads and organizer event management
type CatalogServiceInterface interface {
	UpcomingEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error)
	CreateEvent(ctx context.Context, req *models.EventCreateRequest, organizer *models.User) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int, req *models.EventCreateRequest, user *models.User) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int, user *models.User) error
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	Locations(ctx context.Context) ([]*models.Location, error)
	UserTickets(ctx context.Context, userID int) ([]*models.Ticket, error)
}

// UserServiceInterface defines account operations
type UserServiceInterface interface {
	Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// PaymentServiceInterface defines provider callback handling and payment history
type PaymentServiceInterface interface {
	RecordWebhook(ctx context.Context, body []byte) (*models.TransactionLog, error)
	History(ctx context.Context, paymentID int) (*models.Payment, []*models.TransactionLog, error)
}

// AnalyticsServiceInterface defines the staff reporting operations
type AnalyticsServiceInterface interface {
	BIReport(ctx context.Context, r DateRange) (*BIReport, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
	ExportAttendees(ctx context.Context, eventID int) ([]byte, error)
}

var (
	_ ReservationServiceInterface    = (*ReservationService)(nil)
	_ RecommendationServiceInterface = (*RecommendationService)(nil)
	_ CatalogServiceInterface        = (*CatalogService)(nil)
	_ UserServiceInterface           = (*UserService)(nil)
	_ PaymentServiceInterface        = (*PaymentService)(nil)
	_ AnalyticsServiceInterface      = (*AnalyticsService)(nil)
)
