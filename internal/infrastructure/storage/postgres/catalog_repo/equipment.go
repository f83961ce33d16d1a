package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"partsledger/internal/core/id"
	"partsledger/internal/domain/catalogs/equipment"
	"partsledger/internal/infrastructure/storage/postgres"
)

const equipmentTable = "cat_equipment"

// EquipmentRepo implements equipment.Repository.
type EquipmentRepo struct {
	*BaseCatalogRepo[*equipment.Equipment]
}

// NewEquipmentRepo creates a new equipment repository.
func NewEquipmentRepo(txManager *postgres.TxManager) *EquipmentRepo {
	return &EquipmentRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			equipmentTable,
			postgres.ExtractDBColumns[equipment.Equipment](),
			func() *equipment.Equipment { return &equipment.Equipment{} },
		),
	}
}

// FindByInventoryNumber retrieves equipment by inventory tag.
func (r *EquipmentRepo) FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*equipment.Equipment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"inventory_number": inventoryNumber}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ExistsSequenceNumber checks (company, sequence) uniqueness.
func (r *EquipmentRepo) ExistsSequenceNumber(ctx context.Context, companyID id.ID, sequenceNumber int, excludeID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(equipmentTable).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"sequence_number": sequenceNumber}).
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists sequence number: %w", err)
	}
	return true, nil
}

// ListByCompany returns non-deleted equipment of one company.
func (r *EquipmentRepo) ListByCompany(ctx context.Context, companyID id.ID) ([]*equipment.Equipment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("sequence_number ASC")

	return r.FindAll(ctx, q)
}
