package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"partsledger/internal/domain/catalogs/unit"
	"partsledger/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseCatalogRepo[*unit.Unit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			unitTable,
			postgres.ExtractDBColumns[unit.Unit](),
			func() *unit.Unit { return &unit.Unit{} },
		),
	}
}

// FindBySymbol retrieves unit by symbol, case-insensitive.
func (r *UnitRepo) FindBySymbol(ctx context.Context, symbol string) (*unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Expr("LOWER(symbol) = LOWER(?)", symbol)).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListActive returns all non-deleted units.
func (r *UnitRepo) ListActive(ctx context.Context) ([]*unit.Unit, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Eq{"active": true}).
		OrderBy("name ASC")

	return r.FindAll(ctx, q)
}
