// Package company provides the company catalog. Companies own equipment
// and appear on invoices as the purchasing party.
package company

import (
	"context"

	"partsledger/internal/core/entity"
)

// Company represents an operating company.
type Company struct {
	entity.Catalog

	// FullName is the official legal name, when different from Name
	FullName *string `db:"full_name" json:"fullName,omitempty"`
}

// NewCompany creates a new Company.
func NewCompany(code, name string) *Company {
	return &Company{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (c *Company) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
