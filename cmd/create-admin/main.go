package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/models"
	"eventhub/internal/repositories"
	"eventhub/internal/services"
)

func main() {
	var (
		username = flag.String("username", "adminevent", "Staff username")
		email    = flag.String("email", "adminevent@gmail.event", "Staff email")
		password = flag.String("password", "rootroot", "Staff password")
	)
	flag.Parse()

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

	user, created, err := userService.EnsureUser(ctx, &models.UserCreateRequest{
		Username:  *username,
		Email:     *email,
		Password:  *password,
		FirstName: "Admin",
		LastName:  "Event",
		IsStaff:   true,
	})
	if err != nil {
		log.Fatal("Failed to create staff user:", err)
	}

	if !created {
		fmt.Printf("User %s already exists with ID: %d\n", user.Username, user.ID)
		if !user.IsStaff {
			fmt.Println("Warning: the existing account is not staff and cannot reach admin endpoints")
		}
		return
	}

	fmt.Printf("Staff user created successfully!\n")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("User ID: %d\n", user.ID)
}
