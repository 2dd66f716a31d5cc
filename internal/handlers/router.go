package handlers

import (
	"net/http"
	"strings"

	"eventhub/internal/middleware"
	"eventhub/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// SessionManager loads the signed-in user and binds sessions
type SessionManager interface {
	SessionBinder
	LoadUser(next http.Handler) http.Handler
}

// RouterConfig carries everything the API router mounts
type RouterConfig struct {
	Reservations    services.ReservationServiceInterface
	Catalog         services.CatalogServiceInterface
	Recommendations services.RecommendationServiceInterface
	Users           services.UserServiceInterface
	Payments        services.PaymentServiceInterface
	Analytics       services.AnalyticsServiceInterface
	Sessions        SessionManager
	LoginLimiter    *middleware.LoginRateLimiter
	AllowedOrigins  []string
	// Metrics is mounted at /metrics when set
	Metrics http.Handler
	// MediaDir is served under MediaPath when both are set
	MediaDir  string
	MediaPath string
}

// NewRouter builds the HTTP API
func NewRouter(cfg RouterConfig) http.Handler {
	purchase := NewPurchaseHandler(cfg.Reservations)
	catalog := NewCatalogHandler(cfg.Catalog, cfg.Recommendations)
	organizer := NewOrganizerEventHandler(cfg.Catalog)
	account := NewAccountHandler(cfg.Users, cfg.Sessions)
	admin := NewAdminHandler(cfg.Analytics)
	payment := NewPaymentHandler(cfg.Payments)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))
	r.Use(cfg.Sessions.LoadUser)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.MediaDir != "" && strings.HasPrefix(cfg.MediaPath, "/") {
		mediaPath := strings.TrimSuffix(cfg.MediaPath, "/")
		r.Handle(mediaPath+"/*", http.StripPrefix(mediaPath, http.FileServer(http.Dir(cfg.MediaDir))))
	}

	r.Route("/api", func(r chi.Router) {
		// Public catalog
		r.Get("/events", catalog.ListEvents)
		r.Get("/events/{eventID}", catalog.GetEvent)
		r.Get("/events/{eventID}/availability", purchase.Availability)
		r.Get("/categories", catalog.Categories)
		r.Get("/locations", catalog.Locations)

		// Accounts
		r.Post("/users/register", account.Register)
		r.Route("/session", func(r chi.Router) {
			if cfg.LoginLimiter != nil {
				r.Use(middleware.LoginRateLimit(cfg.LoginLimiter))
			}
			r.Post("/", account.SignIn)
			r.Delete("/", account.SignOut)
			r.With(middleware.RequireUser).Get("/", account.Me)
		})

		// Provider callbacks carry no session
		r.Post("/payments/webhook", payment.Webhook)

		// Buyer flows
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/payments/create", purchase.CreateIntent)
			r.Post("/payments/confirm", purchase.Confirm)
			r.Post("/tickets/book", purchase.Book)

			// Organizer event management; ownership is checked per event
			r.Post("/events", organizer.CreateEvent)
			r.Put("/events/{eventID}", organizer.UpdateEvent)
			r.Delete("/events/{eventID}", organizer.DeleteEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSelfOrStaff("userID"))
			r.Get("/users/{userID}/tickets", catalog.UserTickets)
			r.Get("/recommendations/{userID}", catalog.Recommendations)
		})

		// Staff only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff)
			r.Post("/tickets/scan", purchase.Scan)
			r.Get("/stats", admin.Stats)
			r.Get("/admin/bi", admin.BIReport)
			r.Get("/admin/events/{eventID}/attendees.csv", admin.ExportAttendees)
			r.Get("/admin/payments/{paymentID}", payment.History)
		})
	})

	return r
}
