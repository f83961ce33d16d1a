package writeoff

import (
	"context"

	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// ListFilter narrows fact listings.
type ListFilter struct {
	ReportMonthID *id.ID
	SparePartID   *id.ID
	Source        *Source
	Status        *Status
	OrderBy       string
	Limit         int
	Offset        int
}

// DefaultListFilter sorts newest facts first.
func DefaultListFilter() ListFilter {
	return ListFilter{
		OrderBy: "-fact_date, -created_at",
		Limit:   50,
	}
}

// Repository defines persistence for write-off facts.
type Repository interface {
	Create(ctx context.Context, fact *Fact) error

	GetByID(ctx context.Context, factID id.ID) (*Fact, error)

	// GetForUpdate locks the fact row; Cancel runs under this lock.
	GetForUpdate(ctx context.Context, factID id.ID) (*Fact, error)

	// UpdateStatus persists a status change. The only mutable column.
	UpdateStatus(ctx context.Context, factID id.ID, status Status) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Fact], error)
}
