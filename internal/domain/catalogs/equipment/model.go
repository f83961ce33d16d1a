// Package equipment provides the equipment catalog. Write-off facts snapshot
// equipment attributes at write-off time, so later edits here never change
// recorded history.
package equipment

import (
	"context"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/entity"
	"partsledger/internal/core/id"
)

// Equipment represents a machine or installation owned by a company.
type Equipment struct {
	entity.Catalog

	// InventoryNumber is the accounting inventory tag (unique)
	InventoryNumber string `db:"inventory_number" json:"inventoryNumber"`

	// SequenceNumber orders equipment within a company (unique per company)
	SequenceNumber int `db:"sequence_number" json:"sequenceNumber"`

	// CompanyID is the owning company
	CompanyID id.ID `db:"company_id" json:"companyId"`
}

// NewEquipment creates a new Equipment.
func NewEquipment(code, name, inventoryNumber string, sequenceNumber int, companyID id.ID) *Equipment {
	return &Equipment{
		Catalog:         entity.NewCatalog(code, name),
		InventoryNumber: inventoryNumber,
		SequenceNumber:  sequenceNumber,
		CompanyID:       companyID,
	}
}

// Validate implements entity.Validatable.
func (e *Equipment) Validate(ctx context.Context) error {
	if err := e.Catalog.Validate(ctx); err != nil {
		return err
	}

	if e.InventoryNumber == "" {
		return apperror.NewValidation("inventory number is required").
			WithDetail("field", "inventory_number")
	}
	if e.SequenceNumber < 1 {
		return apperror.NewValidation("sequence number must be positive").
			WithDetail("field", "sequence_number").
			WithDetail("value", e.SequenceNumber)
	}
	if id.IsNil(e.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "company_id")
	}
	return nil
}
