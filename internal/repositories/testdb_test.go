package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to DATABASE_URL and applies migrations, skipping when no database is reachable
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping database tests")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("Failed to ping test database: %v", err)
	}

	require.NoError(t, database.NewMigrator(db).RunMigrations(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func uniqueSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func createTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	suffix := uniqueSuffix()
	user, err := NewUserRepository(db).Create(context.Background(), &models.UserCreateRequest{
		Username:  "buyer_" + suffix,
		Email:     "buyer_" + suffix + "@example.com",
		Password:  "hashed-password",
		Interests: []string{"jazz"},
	})
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, db *sql.DB, capacity int, price string) *models.Event {
	t.Helper()
	event, err := NewEventRepository(db).Create(context.Background(), &models.EventCreateRequest{
		Title:    "Test Event " + uniqueSuffix(),
		Date:     time.Now().Add(48 * time.Hour),
		Price:    decimal.RequireFromString(price),
		Capacity: capacity,
	}, nil)
	require.NoError(t, err)
	return event
}
