// Package sparepart provides the spare part catalog referenced by invoice
// items and write-off facts.
package sparepart

import (
	"context"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/entity"
	"partsledger/internal/core/id"
)

// SparePart represents a purchasable spare part.
type SparePart struct {
	entity.Catalog

	// UnitID is the default measurement unit
	UnitID id.ID `db:"unit_id" json:"unitId"`

	// CompanyID is the company this part is stocked for
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// PartNumber is the manufacturer part number, when known
	PartNumber *string `db:"part_number" json:"partNumber,omitempty"`
}

// NewSparePart creates a new SparePart.
func NewSparePart(code, name string, unitID, companyID id.ID) *SparePart {
	return &SparePart{
		Catalog:   entity.NewCatalog(code, name),
		UnitID:    unitID,
		CompanyID: companyID,
	}
}

// Validate implements entity.Validatable.
func (p *SparePart) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit_id")
	}
	if id.IsNil(p.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "company_id")
	}
	return nil
}
