package ingest

import (
	"context"
	"fmt"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/domain/catalogs/sparepart"
	"partsledger/internal/domain/documents/invoice"
)

// UnitResolver maps a free-form unit label to a catalog unit.
// Satisfied by the unit catalog service.
type UnitResolver interface {
	Resolve(ctx context.Context, label string) (id.ID, bool, error)
}

// PartLookup finds a spare part by its exact catalog name.
// Satisfied by the spare part repository.
type PartLookup interface {
	FindByName(ctx context.Context, companyID id.ID, name string) (*sparepart.SparePart, error)
}

// Resolver turns parsed workbook rows into invoice items by matching
// labels against the catalogs. Rows whose spare part cannot be matched
// become parsing errors; an unmatched unit is recorded as a nil unit on
// the item.
type Resolver struct {
	spareParts PartLookup
	units      UnitResolver
}

// NewResolver creates a resolver over the given catalogs.
func NewResolver(spareParts PartLookup, units UnitResolver) *Resolver {
	return &Resolver{spareParts: spareParts, units: units}
}

// Resolve maps parse output to items and diagnostics for one version.
// The version reference on the returned rows is filled in later, when the
// results are attached. Catalog lookups are scoped to the invoice company.
func (r *Resolver) Resolve(ctx context.Context, companyID id.ID, parsed ParseOutput) (invoice.ParseResults, error) {
	var results invoice.ParseResults

	for _, rowErr := range parsed.Errors {
		results.Errors = append(results.Errors,
			invoice.NewParsingError(id.Nil(), rowErr.Message, rowErr.Row))
	}

	for _, row := range parsed.Rows {
		part, err := r.spareParts.FindByName(ctx, companyID, row.Name)
		if err != nil {
			if apperror.IsNotFound(err) {
				rowNum := row.Row
				results.Errors = append(results.Errors, invoice.NewParsingError(id.Nil(),
					fmt.Sprintf("spare part %q is not in the catalog", row.Name), &rowNum))
				continue
			}
			return invoice.ParseResults{}, err
		}

		var unitID *id.ID
		if row.Unit != "" {
			resolved, ok, err := r.units.Resolve(ctx, row.Unit)
			if err != nil {
				return invoice.ParseResults{}, err
			}
			if ok {
				unitID = &resolved
			}
		}

		results.Items = append(results.Items,
			invoice.NewItem(id.Nil(), part.ID, row.Name, row.Quantity, unitID))
	}
	return results, nil
}
