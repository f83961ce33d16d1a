// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

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
	"partsledger/internal/domain/documents/invoice"
	"partsledger/internal/infrastructure/storage/postgres"
)

const (
	invoiceTable      = "doc_invoices"
	versionTable      = "doc_invoice_versions"
	itemTable         = "doc_invoice_items"
	parsingErrorTable = "doc_invoice_parsing_errors"
)

// Compile-time check.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository. Version writes assume the
// caller holds the invoice row lock via GetForUpdate; the repo itself only
// executes statements.
type InvoiceRepo struct {
	txManager   *postgres.TxManager
	invoiceCols []string
	versionCols []string
	itemCols    []string
	perrCols    []string
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txManager:   txManager,
		invoiceCols: postgres.ExtractDBColumns[invoice.Invoice](),
		versionCols: postgres.ExtractDBColumns[invoice.Version](),
		itemCols:    postgres.ExtractDBColumns[invoice.Item](),
		perrCols:    postgres.ExtractDBColumns[invoice.ParsingError](),
	}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *InvoiceRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.invoiceCols...).From(invoiceTable)
}

// Create inserts a new invoice header.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)

	sql, args, err := r.builder().
		Insert(invoiceTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("invoice", "number", fmt.Sprintf("%d", inv.Number)).WithCause(err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": invoiceID}).Limit(1)
	return r.getOne(ctx, q, invoiceID)
}

// GetForUpdate retrieves an invoice with a row lock. The serialization
// point for version sequencing.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": invoiceID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, invoiceID)
}

func (r *InvoiceRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, invoiceID id.ID) (*invoice.Invoice, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoice.Invoice
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// Update persists invoice changes with optimistic locking.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)
	delete(data, "id")
	rowVersion := data["row_version"].(int)
	delete(data, "row_version")

	sql, args, err := r.builder().
		Update(invoiceTable).
		SetMap(data).
		Set("row_version", squirrel.Expr("row_version + 1")).
		Where(squirrel.Eq{"id": inv.ID}).
		Where(squirrel.Eq{"row_version": rowVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("invoice", "number", fmt.Sprintf("%d", inv.Number)).WithCause(err)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("invoice", inv.ID)
	}
	return nil
}

// Delete removes an invoice. Versions, items and parsing errors go with it
// via ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	// The active version pointer references a version row; drop it first
	// so the version cascade does not trip the FK.
	clearSQL, clearArgs, err := r.builder().
		Update(invoiceTable).
		Set("active_version_id", nil).
		Where(squirrel.Eq{"id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear active version: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, clearSQL, clearArgs...); err != nil {
		return fmt.Errorf("clear active version: %w", err)
	}

	sql, args, err := r.builder().
		Delete(invoiceTable).
		Where(squirrel.Eq{"id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewProtected("invoice", invoiceID.String(), "write-off facts").WithCause(err)
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	return nil
}

// List retrieves invoices with filtering.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	if filter.ReportMonthID != nil {
		q = q.Where(squirrel.Eq{"report_month_id": *filter.ReportMonthID})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.Number != nil {
		q = q.Where(squirrel.Eq{"number": *filter.Number})
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

	switch filter.OrderBy {
	case "-number":
		q = q.OrderBy("number DESC")
	case "date":
		q = q.OrderBy("date ASC, number ASC")
	case "-date":
		q = q.OrderBy("date DESC, number DESC")
	default:
		q = q.OrderBy("number ASC")
	}
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
		return result, fmt.Errorf("list invoices: %w", err)
	}
	return result, nil
}

// ExistsNumber checks (report month, number) uniqueness.
func (r *InvoiceRepo) ExistsNumber(ctx context.Context, reportMonthID id.ID, number int, excludeID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Select("1").
		From(invoiceTable).
		Where(squirrel.Eq{"report_month_id": reportMonthID, "number": number}).
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
		return false, fmt.Errorf("exists number: %w", err)
	}
	return true, nil
}

// --- Versions ---

// CreateVersion inserts a version row. The unique (invoice_id, version)
// constraint backs up the lock discipline at the storage level.
func (r *InvoiceRepo) CreateVersion(ctx context.Context, v *invoice.Version) error {
	data := postgres.StructToMap(v)

	sql, args, err := r.builder().
		Insert(versionTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConsistency(
				fmt.Sprintf("duplicate invoice version %d", v.Number)).WithCause(err)
		}
		return fmt.Errorf("insert invoice version: %w", err)
	}
	return nil
}

// GetVersion retrieves a version by ID.
func (r *InvoiceRepo) GetVersion(ctx context.Context, versionID id.ID) (*invoice.Version, error) {
	sql, args, err := r.builder().
		Select(r.versionCols...).
		From(versionTable).
		Where(squirrel.Eq{"id": versionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v invoice.Version
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice version", versionID.String())
		}
		return nil, fmt.Errorf("get invoice version: %w", err)
	}
	return &v, nil
}

// ListVersions returns versions of an invoice, oldest first.
func (r *InvoiceRepo) ListVersions(ctx context.Context, invoiceID id.ID) ([]*invoice.Version, error) {
	sql, args, err := r.builder().
		Select(r.versionCols...).
		From(versionTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("version ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var versions []*invoice.Version
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &versions, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoice versions: %w", err)
	}
	return versions, nil
}

// MaxVersionNumber returns the highest version number, 0 when none exist.
func (r *InvoiceRepo) MaxVersionNumber(ctx context.Context, invoiceID id.ID) (int, error) {
	sql, args, err := r.builder().
		Select("COALESCE(MAX(version), 0)").
		From(versionTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var max int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}
	return max, nil
}

// CountVersions returns the number of versions of an invoice.
func (r *InvoiceRepo) CountVersions(ctx context.Context, invoiceID id.ID) (int64, error) {
	sql, args, err := r.builder().
		Select("COUNT(*)").
		From(versionTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return count, nil
}

// DeleteVersion removes a version. Items and parsing errors cascade.
func (r *InvoiceRepo) DeleteVersion(ctx context.Context, versionID id.ID) error {
	sql, args, err := r.builder().
		Delete(versionTable).
		Where(squirrel.Eq{"id": versionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewProtected("invoice version", versionID.String(), "write-off facts").WithCause(err)
		}
		return fmt.Errorf("delete invoice version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice version", versionID.String())
	}
	return nil
}

// --- Items and parsing errors ---

// CreateItems bulk inserts items using COPY when inside a transaction.
func (r *InvoiceRepo) CreateItems(ctx context.Context, items []*invoice.Item) error {
	if len(items) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		columns := []string{"id", "version_id", "spare_part_id", "name", "quantity", "unit_id"}
		rows := make([][]any, 0, len(items))
		for _, item := range items {
			rows = append(rows, []any{
				item.ID, item.VersionID, item.SparePartID, item.Name, item.Quantity, item.UnitID,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, itemTable, columns, rows); err != nil {
			return fmt.Errorf("copy invoice items: %w", err)
		}
		return nil
	}

	// Outside a transaction, fall back to a multi-row insert.
	q := r.builder().Insert(itemTable).
		Columns("id", "version_id", "spare_part_id", "name", "quantity", "unit_id")
	for _, item := range items {
		q = q.Values(item.ID, item.VersionID, item.SparePartID, item.Name, item.Quantity, item.UnitID)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

// ListItems returns items of a version.
func (r *InvoiceRepo) ListItems(ctx context.Context, versionID id.ID) ([]*invoice.Item, error) {
	sql, args, err := r.builder().
		Select(r.itemCols...).
		From(itemTable).
		Where(squirrel.Eq{"version_id": versionID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	return items, nil
}

// CreateParsingErrors inserts parsing diagnostics.
func (r *InvoiceRepo) CreateParsingErrors(ctx context.Context, errs []*invoice.ParsingError) error {
	if len(errs) == 0 {
		return nil
	}

	q := r.builder().Insert(parsingErrorTable).
		Columns("id", "version_id", "message", "row_num", "created_at")
	for _, perr := range errs {
		q = q.Values(perr.ID, perr.VersionID, perr.Message, perr.Row, perr.CreatedAt)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert parsing errors: %w", err)
	}
	return nil
}

// ListParsingErrors returns diagnostics of a version, in workbook order.
func (r *InvoiceRepo) ListParsingErrors(ctx context.Context, versionID id.ID) ([]*invoice.ParsingError, error) {
	sql, args, err := r.builder().
		Select(r.perrCols...).
		From(parsingErrorTable).
		Where(squirrel.Eq{"version_id": versionID}).
		OrderBy("row_num ASC NULLS LAST, created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perrs []*invoice.ParsingError
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &perrs, sql, args...); err != nil {
		return nil, fmt.Errorf("list parsing errors: %w", err)
	}
	return perrs, nil
}
