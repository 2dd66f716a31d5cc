package models

import (
	"strings"
	"testing"
)

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid category",
			category: Category{Name: "Musique"},
			wantErr:  false,
		},
		{
			name:     "invalid name - empty",
			category: Category{Name: "   "},
			wantErr:  true,
			errMsg:   "category name is required",
		},
		{
			name:     "invalid name - too long",
			category: Category{Name: strings.Repeat("a", 101)},
			wantErr:  true,
			errMsg:   "category name must be less than 100 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Category.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Category.Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLocation_Validate(t *testing.T) {
	tests := []struct {
		name     string
		location Location
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid location",
			location: Location{Name: "Cité de la Culture", Address: "Tunis", Capacity: 3000},
			wantErr:  false,
		},
		{
			name:     "invalid name - empty",
			location: Location{Name: ""},
			wantErr:  true,
			errMsg:   "location name is required",
		},
		{
			name:     "invalid capacity - negative",
			location: Location{Name: "Arena", Capacity: -1},
			wantErr:  true,
			errMsg:   "location capacity cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.location.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Location.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Location.Validate() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}
