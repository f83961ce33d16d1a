// Package period_repo provides the PostgreSQL implementation of the report
// month repository.
package period_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/domain"
	"partsledger/internal/domain/reportmonth"
	"partsledger/internal/infrastructure/storage/postgres"
)

const (
	reportMonthTable = "report_months"
	invoiceTable     = "doc_invoices"
)

// Compile-time check.
var _ reportmonth.Repository = (*ReportMonthRepo)(nil)

// ReportMonthRepo implements reportmonth.Repository.
type ReportMonthRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewReportMonthRepo creates a new report month repository.
func NewReportMonthRepo(txManager *postgres.TxManager) *ReportMonthRepo {
	return &ReportMonthRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[reportmonth.ReportMonth](),
	}
}

func (r *ReportMonthRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ReportMonthRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.selectCols...).From(reportMonthTable)
}

// Create inserts a new report month.
func (r *ReportMonthRepo) Create(ctx context.Context, m *reportmonth.ReportMonth) error {
	data := postgres.StructToMap(m)

	sql, args, err := r.builder().
		Insert(reportMonthTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("report month", "period", m.Period()).WithCause(err)
		}
		return fmt.Errorf("insert report month: %w", err)
	}
	return nil
}

// GetByID retrieves a month by ID.
func (r *ReportMonthRepo) GetByID(ctx context.Context, monthID id.ID) (*reportmonth.ReportMonth, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": monthID}).Limit(1)
	return r.getOne(ctx, q, monthID.String())
}

// GetForUpdate retrieves a month with a row lock.
func (r *ReportMonthRepo) GetForUpdate(ctx context.Context, monthID id.ID) (*reportmonth.ReportMonth, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": monthID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, monthID.String())
}

// GetByPeriod retrieves a month by (year, month).
func (r *ReportMonthRepo) GetByPeriod(ctx context.Context, year, month int) (*reportmonth.ReportMonth, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"year": year, "month": month}).
		Limit(1)
	return r.getOne(ctx, q, fmt.Sprintf("%04d-%02d", year, month))
}

func (r *ReportMonthRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*reportmonth.ReportMonth, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m reportmonth.ReportMonth
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("report month", key)
		}
		return nil, fmt.Errorf("get report month: %w", err)
	}
	return &m, nil
}

// Update persists month changes with optimistic locking.
func (r *ReportMonthRepo) Update(ctx context.Context, m *reportmonth.ReportMonth) error {
	data := postgres.StructToMap(m)
	delete(data, "id")
	rowVersion := data["row_version"].(int)
	delete(data, "row_version")

	sql, args, err := r.builder().
		Update(reportMonthTable).
		SetMap(data).
		Set("row_version", squirrel.Expr("row_version + 1")).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"row_version": rowVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("report month", "period", m.Period()).WithCause(err)
		}
		return fmt.Errorf("update report month: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("report month", m.ID)
	}
	return nil
}

// Delete removes a month. Foreign keys protect months that still have
// invoices or facts.
func (r *ReportMonthRepo) Delete(ctx context.Context, monthID id.ID) error {
	sql, args, err := r.builder().
		Delete(reportMonthTable).
		Where(squirrel.Eq{"id": monthID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewProtected("report month", monthID.String(), "invoices or write-off facts").WithCause(err)
		}
		return fmt.Errorf("delete report month: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("report month", monthID.String())
	}
	return nil
}

// List retrieves months with filtering.
func (r *ReportMonthRepo) List(ctx context.Context, filter reportmonth.ListFilter) (domain.ListResult[*reportmonth.ReportMonth], error) {
	result := domain.ListResult[*reportmonth.ReportMonth]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	if filter.Year != nil {
		q = q.Where(squirrel.Eq{"year": *filter.Year})
	}
	if filter.IsClosed != nil {
		q = q.Where(squirrel.Eq{"is_closed": *filter.IsClosed})
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

	q = q.OrderBy(parseOrderBy(filter.OrderBy, "year DESC, month DESC"))
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
		return result, fmt.Errorf("list report months: %w", err)
	}
	return result, nil
}

// ExistsPeriod checks (year, month) uniqueness.
func (r *ReportMonthRepo) ExistsPeriod(ctx context.Context, year, month int, excludeID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Select("1").
		From(reportMonthTable).
		Where(squirrel.Eq{"year": year, "month": month}).
		Where(squirrel.NotEq{"id": excludeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists period: %w", err)
	}
	return true, nil
}

// CountInvoices returns the number of invoices attached to the month.
func (r *ReportMonthRepo) CountInvoices(ctx context.Context, monthID id.ID) (int64, error) {
	sql, args, err := r.builder().
		Select("COUNT(*)").
		From(invoiceTable).
		Where(squirrel.Eq{"report_month_id": monthID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// parseOrderBy maps "-col, -col2" style ordering to SQL, falling back to
// the default for anything it does not recognize.
func parseOrderBy(orderBy, fallback string) string {
	switch orderBy {
	case "", "-year, -month":
		return fallback
	case "year, month":
		return "year ASC, month ASC"
	default:
		return fallback
	}
}
