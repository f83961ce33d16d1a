package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"partsledger/internal/core/id"
	"partsledger/internal/domain/catalogs/sparepart"
	"partsledger/internal/infrastructure/storage/postgres"
)

const sparePartTable = "cat_spare_parts"

// SparePartRepo implements sparepart.Repository.
type SparePartRepo struct {
	*BaseCatalogRepo[*sparepart.SparePart]
}

// NewSparePartRepo creates a new spare part repository.
func NewSparePartRepo(txManager *postgres.TxManager) *SparePartRepo {
	return &SparePartRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			sparePartTable,
			postgres.ExtractDBColumns[sparepart.SparePart](),
			func() *sparepart.SparePart { return &sparepart.SparePart{} },
		),
	}
}

// FindByName retrieves a part by exact name within a company.
func (r *SparePartRepo) FindByName(ctx context.Context, companyID id.ID, name string) (*sparepart.SparePart, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListByCompany returns non-deleted parts of one company.
func (r *SparePartRepo) ListByCompany(ctx context.Context, companyID id.ID) ([]*sparepart.SparePart, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	return r.FindAll(ctx, q)
}
