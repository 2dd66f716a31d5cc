package handlers

import (
	"context"
	"net/http"
	"time"

	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/services"

	"github.com/stretchr/testify/mock"
)

type mockReservations struct {
	mock.Mock
}

func (m *mockReservations) CreateIntent(ctx context.Context, req *models.PurchaseIntentRequest) (*services.IntentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IntentResult), args.Error(1)
}

func (m *mockReservations) Confirm(ctx context.Context, req *models.ConfirmPurchaseRequest) (*services.ConfirmResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConfirmResult), args.Error(1)
}

func (m *mockReservations) Book(ctx context.Context, req *models.BookRequest) (*services.ConfirmResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConfirmResult), args.Error(1)
}

func (m *mockReservations) Scan(ctx context.Context, scanned string) (*models.Ticket, error) {
	args := m.Called(ctx, scanned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *mockReservations) Availability(ctx context.Context, eventID int) (services.LedgerReading, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(services.LedgerReading), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) UpcomingEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *mockCatalog) CreateEvent(ctx context.Context, req *models.EventCreateRequest, organizer *models.User) (*models.Event, error) {
	args := m.Called(ctx, req, organizer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockCatalog) UpdateEvent(ctx context.Context, id int, req *models.EventCreateRequest, user *models.User) (*models.Event, error) {
	args := m.Called(ctx, id, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockCatalog) DeleteEvent(ctx context.Context, id int, user *models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *mockCatalog) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockCatalog) Categories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *mockCatalog) Locations(ctx context.Context) ([]*models.Location, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Location), args.Error(1)
}

func (m *mockCatalog) UserTickets(ctx context.Context, userID int) ([]*models.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

type mockRecommendations struct {
	mock.Mock
}

func (m *mockRecommendations) Recommend(ctx context.Context, userID int) ([]*models.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUsers) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUsers) GetUser(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) RecordWebhook(ctx context.Context, body []byte) (*models.TransactionLog, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionLog), args.Error(1)
}

func (m *mockPayments) History(ctx context.Context, paymentID int) (*models.Payment, []*models.TransactionLog, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Payment), args.Get(1).([]*models.TransactionLog), args.Error(2)
}

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) BIReport(ctx context.Context, r services.DateRange) (*services.BIReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BIReport), args.Error(1)
}

func (m *mockAnalytics) AdminStats(ctx context.Context) (*services.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AdminStats), args.Error(1)
}

func (m *mockAnalytics) ExportAttendees(ctx context.Context, eventID int) ([]byte, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// fakeSessions signs in whoever is set as user and records Login/Logout calls
type fakeSessions struct {
	user      *models.User
	loggedIn  *models.User
	loggedOut bool
}

func (f *fakeSessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.user != nil {
			r = r.WithContext(middleware.SetUserContext(r.Context(), f.user))
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeSessions) Login(w http.ResponseWriter, r *http.Request, user *models.User) error {
	f.loggedIn = user
	return nil
}

func (f *fakeSessions) Logout(w http.ResponseWriter, r *http.Request) error {
	f.loggedOut = true
	return nil
}

type testAPI struct {
	reservations    *mockReservations
	catalog         *mockCatalog
	recommendations *mockRecommendations
	users           *mockUsers
	payments        *mockPayments
	analytics       *mockAnalytics
	sessions        *fakeSessions
	router          http.Handler
}

func newTestAPI(user *models.User) *testAPI {
	api := &testAPI{
		reservations:    &mockReservations{},
		catalog:         &mockCatalog{},
		recommendations: &mockRecommendations{},
		users:           &mockUsers{},
		payments:        &mockPayments{},
		analytics:       &mockAnalytics{},
		sessions:        &fakeSessions{user: user},
	}
	api.router = NewRouter(RouterConfig{
		Reservations:    api.reservations,
		Catalog:         api.catalog,
		Recommendations: api.recommendations,
		Users:           api.users,
		Payments:        api.payments,
		Analytics:       api.analytics,
		Sessions:        api.sessions,
		LoginLimiter:    middleware.NewLoginRateLimiter(5, time.Minute),
	})
	return api
}
