package reportmonth

import (
	"context"

	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// ListFilter narrows report month listings.
type ListFilter struct {
	Year     *int
	IsClosed *bool
	OrderBy  string
	Limit    int
	Offset   int
}

// DefaultListFilter sorts newest period first.
func DefaultListFilter() ListFilter {
	return ListFilter{
		OrderBy: "-year, -month",
		Limit:   50,
	}
}

// Repository defines persistence operations for report months.
type Repository interface {
	Create(ctx context.Context, month *ReportMonth) error

	GetByID(ctx context.Context, monthID id.ID) (*ReportMonth, error)

	// GetForUpdate locks the month row until the surrounding transaction
	// ends. Close, Reopen and Update run under this lock.
	GetForUpdate(ctx context.Context, monthID id.ID) (*ReportMonth, error)

	GetByPeriod(ctx context.Context, year, month int) (*ReportMonth, error)

	Update(ctx context.Context, month *ReportMonth) error

	Delete(ctx context.Context, monthID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ReportMonth], error)

	// ExistsPeriod checks (year, month) uniqueness, ignoring excludeID.
	ExistsPeriod(ctx context.Context, year, month int, excludeID id.ID) (bool, error)

	// CountInvoices returns the number of invoices attached to the month.
	// Used to protect deletion.
	CountInvoices(ctx context.Context, monthID id.ID) (int64, error)
}
