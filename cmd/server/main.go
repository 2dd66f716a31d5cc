package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/handlers"
	"eventhub/internal/middleware"
	"eventhub/internal/repositories"
	"eventhub/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(database.FromAppConfig(cfg.Database))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	catalogRepo := repositories.NewCatalogRepository(db.DB)
	ticketRepo := repositories.NewTicketRepository(db.DB)
	paymentRepo := repositories.NewPaymentRepository(db.DB)
	reservationStore := repositories.NewReservationStore(db.DB)

	// Storage is R2 when configured, local disk otherwise
	storage := services.NewStorageService(ctx, cfg)
	qrCodes := services.NewQRCodeService(storage, ticketRepo, cfg.Storage.QRPrefix, cfg.Storage.QRSize)

	var recommendationCache services.RecommendationCache
	if client := services.NewRedisClient(ctx, cfg.Redis); client != nil {
		defer client.Close()
		recommendationCache = services.NewRedisRecommendationCache(client, cfg.Recommendations.CacheTTL)
		log.Printf("Recommendation cache enabled on %s", cfg.Redis.Addr)
	}

	// Initialize services
	userService := services.NewUserService(userRepo)
	catalogService := services.NewCatalogService(eventRepo, catalogRepo, ticketRepo)
	recommendationService := services.NewRecommendationService(eventRepo, userRepo, recommendationCache)
	paymentService := services.NewPaymentService(paymentRepo)
	analyticsService := services.NewAnalyticsService(db.DB)
	reservationService := services.NewReservationService(services.ReservationServiceConfig{
		Store:           reservationStore,
		QRCodes:         qrCodes,
		Notifier:        services.NewNotifier(cfg.Resend),
		Publisher:       services.NewConfirmationPublisher(cfg.RabbitMQ),
		Recommendations: recommendationService,
		Participation:   userRepo,
		InternalEmail:   cfg.Notifications.InternalEmail,
	})

	sessionStore := middleware.NewCookieStore(cfg.Session, cfg.Server.IsProduction())
	sessionManager := middleware.NewSessionManager(sessionStore, cfg.Session.Name, userService)

	router := handlers.NewRouter(handlers.RouterConfig{
		Reservations:    reservationService,
		Catalog:         catalogService,
		Recommendations: recommendationService,
		Users:           userService,
		Payments:        paymentService,
		Analytics:       analyticsService,
		Sessions:        sessionManager,
		LoginLimiter:    middleware.NewLoginRateLimiter(5, time.Minute),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Metrics:         promhttp.Handler(),
		MediaDir:        cfg.Storage.BasePath,
		MediaPath:       cfg.Storage.BaseURL,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Printf("Server starting on %s (%s)", server.Addr, cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
