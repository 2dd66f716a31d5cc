package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/models"
	"eventhub/internal/repositories"
	"eventhub/internal/services"

	"github.com/shopspring/decimal"
)

type seedEvent struct {
	Title       string
	Description string
	Category    string
	Location    models.Location
	Date        time.Time
	Price       string
	Capacity    int
}

func main() {
	fmt.Println("Seeding events")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.FromAppConfig(cfg.Database))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userService := services.NewUserService(repositories.NewUserRepository(db.DB))
	catalogService := services.NewCatalogService(
		repositories.NewEventRepository(db.DB),
		repositories.NewCatalogRepository(db.DB),
		repositories.NewTicketRepository(db.DB),
	)

	organizer, created, err := userService.EnsureUser(ctx, &models.UserCreateRequest{
		Username: "admin",
		Email:    "admin@eventhub.tn",
		Password: "admin123",
		IsStaff:  true,
	})
	if err != nil {
		log.Fatal("Failed to find or create organizer:", err)
	}
	if created {
		fmt.Printf("Created organizer %s (ID: %d)\n", organizer.Username, organizer.ID)
	} else {
		fmt.Printf("Found existing organizer %s (ID: %d)\n", organizer.Username, organizer.ID)
	}

	day := time.Now().Truncate(24 * time.Hour)
	theatre := models.Location{Name: "Théâtre Municipal de Tunis", Address: "Avenue Habib Bourguiba, Tunis", Capacity: 350}
	carthage := models.Location{Name: "Amphithéâtre de Carthage", Address: "Carthage", Capacity: 7500}
	techHub := models.Location{Name: "Lac Tech Hub", Address: "Les Berges du Lac, Tunis", Capacity: 120}

	events := []seedEvent{
		{
			Title:       "Jazz à Carthage",
			Description: "An evening of jazz under the stars with international and local bands.",
			Category:    "Music",
			Location:    carthage,
			Date:        day.AddDate(0, 0, 21).Add(20 * time.Hour),
			Price:       "45.00",
			Capacity:    7500,
		},
		{
			Title:       "Tech Innovation Summit",
			Description: "Talks and workshops on cloud, AI and the startup scene.",
			Category:    "Technology",
			Location:    techHub,
			Date:        day.AddDate(0, 1, 3).Add(9 * time.Hour),
			Price:       "30.00",
			Capacity:    120,
		},
		{
			Title:       "Startup Pitch Night",
			Description: "Early-stage founders pitch to investors. Networking afterwards.",
			Category:    "Business",
			Location:    techHub,
			Date:        day.AddDate(0, 0, 10).Add(18 * time.Hour),
			Price:       "0",
			Capacity:    0,
		},
		{
			Title:       "Le Malade Imaginaire",
			Description: "Molière's comedy staged by the national theatre company.",
			Category:    "Theatre",
			Location:    theatre,
			Date:        day.AddDate(0, 0, 14).Add(19 * time.Hour),
			Price:       "25.50",
			Capacity:    350,
		},
		{
			Title:       "Creative Design Workshop",
			Description: "Hands-on typography, colour theory and digital design tools.",
			Category:    "Arts",
			Location:    techHub,
			Date:        day.AddDate(0, 0, 12).Add(13 * time.Hour),
			Price:       "60.00",
			Capacity:    40,
		},
	}

	fmt.Println("\nCreating events...")
	seeded := 0
	for _, e := range events {
		req := &models.EventCreateRequest{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Price:       decimal.RequireFromString(e.Price),
			Capacity:    e.Capacity,
		}
		if err := req.Validate(); err != nil {
			log.Printf("Skipping %s: %v", e.Title, err)
			continue
		}

		location := e.Location
		event, err := catalogService.SeedEvent(ctx, req, &models.Category{Name: e.Category}, &location, organizer.ID)
		if err != nil {
			log.Printf("Failed to create event %s: %v", e.Title, err)
			continue
		}
		seeded++
		fmt.Printf("Created event: %s (ID: %d, capacity %d)\n", event.Title, event.ID, event.Capacity)
	}

	fmt.Printf("\nSeeded %d of %d events\n", seeded, len(events))
}
