package models

import (
	"errors"
	"strings"
)

// Category represents an event category
type Category struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	ImageURL string `json:"image_url" db:"image_url"`
}

// Location represents a venue events take place in
type Location struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Address  string `json:"address" db:"address"`
	Capacity int    `json:"capacity" db:"capacity"`
}

// Validate validates the category data
func (c *Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.New("category name is required")
	}
	if len(name) > 100 {
		return errors.New("category name must be less than 100 characters")
	}
	return nil
}

// Validate validates the location data
func (l *Location) Validate() error {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return errors.New("location name is required")
	}
	if len(name) > 200 {
		return errors.New("location name must be less than 200 characters")
	}
	if l.Capacity < 0 {
		return errors.New("location capacity cannot be negative")
	}
	return nil
}
