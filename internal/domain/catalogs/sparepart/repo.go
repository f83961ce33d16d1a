package sparepart

import (
	"context"

	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// Repository defines the interface for SparePart persistence.
type Repository interface {
	domain.CatalogRepository[*SparePart]

	// FindByName retrieves a part by exact name within a company.
	// Workbook ingestion resolves item names through this lookup.
	FindByName(ctx context.Context, companyID id.ID, name string) (*SparePart, error)

	// ListByCompany returns non-deleted parts of one company.
	ListByCompany(ctx context.Context, companyID id.ID) ([]*SparePart, error)
}
