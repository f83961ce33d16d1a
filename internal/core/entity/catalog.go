package entity

import (
	"context"

	"partsledger/internal/core/apperror"
)

// Catalog is the base type for reference data: companies, equipment,
// spare parts, measurement units.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (unique per catalog)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Active marks the entity as usable in new records
	Active bool `db:"active" json:"active"`
}

// NewCatalog creates a new Catalog with a generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
		Active:     true,
	}
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if len(c.Name) > MaxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", MaxNameLength)
	}
	// Code may be auto-generated at save time
	return nil
}

// Field length bounds shared by catalogs and parsing.
const (
	MaxNameLength         = 50
	MaxSymbolLength       = 20
	MaxErrorMessageLength = 500
)
