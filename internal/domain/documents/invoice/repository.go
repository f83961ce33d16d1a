package invoice

import (
	"context"

	"partsledger/internal/core/id"
	"partsledger/internal/domain"
)

// ListFilter narrows invoice listings.
type ListFilter struct {
	ReportMonthID *id.ID
	CompanyID     *id.ID
	Number        *int
	OrderBy       string
	Limit         int
	Offset        int
}

// DefaultListFilter sorts by invoice number within the month.
func DefaultListFilter() ListFilter {
	return ListFilter{
		OrderBy: "number",
		Limit:   50,
	}
}

// Repository defines persistence for invoices and their versions.
// Version numbering correctness depends on GetForUpdate: every writer that
// touches a version row must hold the invoice row lock first.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error

	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetForUpdate locks the invoice row until the surrounding transaction
	// ends. This is the serialization point for version sequencing.
	GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	Update(ctx context.Context, inv *Invoice) error

	Delete(ctx context.Context, invoiceID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)

	// ExistsNumber checks (report month, number) uniqueness, ignoring
	// excludeID.
	ExistsNumber(ctx context.Context, reportMonthID id.ID, number int, excludeID id.ID) (bool, error)

	// --- Versions ---

	CreateVersion(ctx context.Context, v *Version) error

	GetVersion(ctx context.Context, versionID id.ID) (*Version, error)

	ListVersions(ctx context.Context, invoiceID id.ID) ([]*Version, error)

	// MaxVersionNumber returns the highest version number of the invoice,
	// or 0 when it has none. Only meaningful under the invoice row lock.
	MaxVersionNumber(ctx context.Context, invoiceID id.ID) (int, error)

	CountVersions(ctx context.Context, invoiceID id.ID) (int64, error)

	DeleteVersion(ctx context.Context, versionID id.ID) error

	// --- Items and parsing errors ---

	CreateItems(ctx context.Context, items []*Item) error

	ListItems(ctx context.Context, versionID id.ID) ([]*Item, error)

	CreateParsingErrors(ctx context.Context, errs []*ParsingError) error

	ListParsingErrors(ctx context.Context, versionID id.ID) ([]*ParsingError, error)
}
