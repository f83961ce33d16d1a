package equipment

import (
	"context"

	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// Repository defines the interface for Equipment persistence.
type Repository interface {
	domain.CatalogRepository[*Equipment]

	// FindByInventoryNumber retrieves equipment by inventory tag.
	FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*Equipment, error)

	// ExistsSequenceNumber checks (company, sequence) uniqueness,
	// ignoring excludeID.
	ExistsSequenceNumber(ctx context.Context, companyID id.ID, sequenceNumber int, excludeID id.ID) (bool, error)

	// ListByCompany returns non-deleted equipment of one company.
	ListByCompany(ctx context.Context, companyID id.ID) ([]*Equipment, error)
}
