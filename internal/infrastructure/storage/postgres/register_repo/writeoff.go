// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/domain"
	"partsledger/internal/domain/registers/writeoff"
	"partsledger/internal/infrastructure/storage/postgres"
)

const writeoffTable = "reg_writeoff_facts"

// Compile-time check.
var _ writeoff.Repository = (*WriteOffRepo)(nil)

// WriteOffRepo implements writeoff.Repository. Fact rows are append-only
// except for the status column.
type WriteOffRepo struct {
	txManager *postgres.TxManager
	columns   []string
}

// NewWriteOffRepo creates a new write-off fact repository.
func NewWriteOffRepo(txManager *postgres.TxManager) *WriteOffRepo {
	return &WriteOffRepo{
		txManager: txManager,
		columns:   postgres.ExtractDBColumns[writeoff.Fact](),
	}
}

func (r *WriteOffRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *WriteOffRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.columns...).From(writeoffTable)
}

// Create inserts a new fact.
func (r *WriteOffRepo) Create(ctx context.Context, fact *writeoff.Fact) error {
	data := postgres.StructToMap(fact)

	sql, args, err := r.builder().
		Insert(writeoffTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert write-off fact: %w", err)
	}
	return nil
}

// GetByID retrieves a fact by ID.
func (r *WriteOffRepo) GetByID(ctx context.Context, factID id.ID) (*writeoff.Fact, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": factID}).Limit(1)
	return r.getOne(ctx, q, factID)
}

// GetForUpdate retrieves a fact with a row lock.
func (r *WriteOffRepo) GetForUpdate(ctx context.Context, factID id.ID) (*writeoff.Fact, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": factID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, factID)
}

func (r *WriteOffRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, factID id.ID) (*writeoff.Fact, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var fact writeoff.Fact
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &fact, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("write-off fact", factID.String())
		}
		return nil, fmt.Errorf("get write-off fact: %w", err)
	}
	return &fact, nil
}

// UpdateStatus persists a status change.
func (r *WriteOffRepo) UpdateStatus(ctx context.Context, factID id.ID, status writeoff.Status) error {
	sql, args, err := r.builder().
		Update(writeoffTable).
		Set("status", status).
		Where(squirrel.Eq{"id": factID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update write-off status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("write-off fact", factID.String())
	}
	return nil
}

// List retrieves facts with filtering.
func (r *WriteOffRepo) List(ctx context.Context, filter writeoff.ListFilter) (domain.ListResult[*writeoff.Fact], error) {
	result := domain.ListResult[*writeoff.Fact]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	if filter.ReportMonthID != nil {
		q = q.Where(squirrel.Eq{"report_month_id": *filter.ReportMonthID})
	}
	if filter.SparePartID != nil {
		q = q.Where(squirrel.Eq{"spare_part_id": *filter.SparePartID})
	}
	if filter.Source != nil {
		q = q.Where(squirrel.Eq{"source": *filter.Source})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	countSQL, countArgs, err := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy(parseOrderBy(filter.OrderBy))
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list write-off facts: %w", err)
	}
	return result, nil
}

func parseOrderBy(orderBy string) string {
	switch orderBy {
	case "fact_date":
		return "fact_date ASC, created_at ASC"
	case "created_at":
		return "created_at ASC"
	case "-created_at":
		return "created_at DESC"
	default:
		return "fact_date DESC, created_at DESC"
	}
}
