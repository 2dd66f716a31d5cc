package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ReferenceLength is the length of a generated ticket reference
const ReferenceLength = 16

// ReferenceGenerator produces ticket references
type ReferenceGenerator interface {
	Generate() (string, error)
}

// UUIDReferenceGenerator derives references from random UUIDs
type UUIDReferenceGenerator struct{}

// Generate returns the first 16 hex digits of a random UUID, uppercased
func (UUIDReferenceGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToUpper(hex[:ReferenceLength]), nil
}

// ReferenceGeneratorFunc adapts a function to ReferenceGenerator
type ReferenceGeneratorFunc func() (string, error)

func (f ReferenceGeneratorFunc) Generate() (string, error) {
	return f()
}
