package unit

import (
	"context"

	"partsledger/internal/domain"
)

// Repository defines the interface for Unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]

	// FindBySymbol retrieves unit by symbol (unique, case-insensitive).
	FindBySymbol(ctx context.Context, symbol string) (*Unit, error)

	// ListActive returns all non-deleted units. Workbook ingestion loads
	// the full set once per file to resolve unit labels in memory.
	ListActive(ctx context.Context) ([]*Unit, error)
}
