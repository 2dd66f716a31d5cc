package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"eventhub/internal/models"
)

// CatalogRepository handles event categories and locations
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories returns all categories ordered by name
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image_url FROM event_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListLocations returns all locations ordered by name
func (r *CatalogRepository) ListLocations(ctx context.Context) ([]*models.Location, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address, capacity FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		l := &models.Location{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetOrCreateCategory returns the category with the given name, creating it if missing
func (r *CatalogRepository) GetOrCreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO event_categories (name, image_url) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, image_url`

	c := &models.Category{}
	if err := r.db.QueryRowContext(ctx, query, category.Name, category.ImageURL).Scan(&c.ID, &c.Name, &c.ImageURL); err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}
	return c, nil
}

// GetOrCreateLocation returns the location with the given name, creating it if missing
func (r *CatalogRepository) GetOrCreateLocation(ctx context.Context, location *models.Location) (*models.Location, error) {
	if err := location.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	l := &models.Location{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, capacity FROM locations WHERE name = $1 LIMIT 1`, location.Name,
	).Scan(&l.ID, &l.Name, &l.Address, &l.Capacity)
	if err == nil {
		return l, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO locations (name, address, capacity) VALUES ($1, $2, $3) RETURNING id, name, address, capacity`,
		location.Name, location.Address, location.Capacity,
	).Scan(&l.ID, &l.Name, &l.Address, &l.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return l, nil
}
