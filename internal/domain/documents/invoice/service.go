package invoice

import (
	"context"
	"fmt"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/internal/domain/reportmonth"
	"partsledger/pkg/logger"
)

// Service implements invoice lifecycle and version sequencing. All mutations
// run inside a transaction and re-check period state under the row lock, so
// a month closed between request validation and commit still wins.
type Service struct {
	repo      Repository
	months    reportmonth.Repository
	txManager tx.Manager
}

// NewService creates an invoice service.
func NewService(repo Repository, months reportmonth.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		months:    months,
		txManager: txManager,
	}
}

// Create registers an invoice header in an open report month.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}
	if inv.ActiveVersionID != nil {
		return apperror.NewValidation("new invoice cannot reference a version").
			WithDetail("field", "active_version_id")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		month, err := s.months.GetByID(ctx, inv.ReportMonthID)
		if err != nil {
			return err
		}
		if err := s.checkMonth(month, inv); err != nil {
			return err
		}

		taken, err := s.repo.ExistsNumber(ctx, inv.ReportMonthID, inv.Number, id.Nil())
		if err != nil {
			return err
		}
		if taken {
			return duplicateNumber(inv.Number, month.Period())
		}
		return s.repo.Create(ctx, inv)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created", "id", inv.ID, "number", inv.Number)
	return nil
}

// Update changes the invoice header. The report month reference is frozen
// once the invoice has at least one version.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if current.RowVersion != inv.RowVersion {
			return apperror.NewConcurrentModification("invoice", inv.ID)
		}

		currentMonth, err := s.months.GetByID(ctx, current.ReportMonthID)
		if err != nil {
			return err
		}
		if currentMonth.IsClosed {
			return apperror.NewPeriodClosed(currentMonth.Period())
		}

		targetMonth := currentMonth
		if inv.ReportMonthID != current.ReportMonthID {
			versions, err := s.repo.CountVersions(ctx, inv.ID)
			if err != nil {
				return err
			}
			if versions > 0 {
				return apperror.NewValidation("cannot move a versioned invoice to another report month").
					WithDetail("invoice_id", inv.ID)
			}
			targetMonth, err = s.months.GetByID(ctx, inv.ReportMonthID)
			if err != nil {
				return err
			}
		}
		if err := s.checkMonth(targetMonth, inv); err != nil {
			return err
		}

		taken, err := s.repo.ExistsNumber(ctx, inv.ReportMonthID, inv.Number, inv.ID)
		if err != nil {
			return err
		}
		if taken {
			return duplicateNumber(inv.Number, targetMonth.Period())
		}

		// The active version pointer is managed by AddVersion only.
		inv.ActiveVersionID = current.ActiveVersionID
		inv.CreatedAt = current.CreatedAt
		inv.Touch()
		return s.repo.Update(ctx, inv)
	})
}

// Delete removes an invoice together with its versions and items.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		month, err := s.months.GetByID(ctx, inv.ReportMonthID)
		if err != nil {
			return err
		}
		if month.IsClosed {
			return apperror.NewPeriodClosed(month.Period())
		}
		return s.repo.Delete(ctx, invoiceID)
	})
}

// FileUpload carries the stored workbook reference for a new version.
type FileUpload struct {
	Ref  string
	Name string
}

// AddVersion appends the next version of the invoice and makes it active,
// atomically. Concurrent uploads against the same invoice serialize on the
// invoice row lock; each transaction then reads the real current maximum,
// so N concurrent calls on an invoice with K versions always yield numbers
// K+1..K+N with no duplicates and no gaps.
func (s *Service) AddVersion(ctx context.Context, invoiceID id.ID, file FileUpload) (*Version, error) {
	if file.Ref == "" {
		return nil, apperror.NewValidation("source file is required").
			WithDetail("field", "file")
	}

	var created *Version
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		month, err := s.months.GetByID(ctx, inv.ReportMonthID)
		if err != nil {
			return err
		}
		if month.IsClosed {
			return apperror.NewPeriodClosed(month.Period())
		}

		maxBefore, err := s.repo.MaxVersionNumber(ctx, invoiceID)
		if err != nil {
			return err
		}

		v := NewVersion(invoiceID, maxBefore+1, file.Ref, file.Name)
		if err := v.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.CreateVersion(ctx, v); err != nil {
			return err
		}

		// With the row lock held the maximum must now be exactly ours.
		// Anything else means a writer bypassed the lock discipline;
		// surface it as a fault, not a retryable caller error.
		maxAfter, err := s.repo.MaxVersionNumber(ctx, invoiceID)
		if err != nil {
			return err
		}
		if maxAfter != v.Number {
			return apperror.NewConsistency(
				fmt.Sprintf("non-sequential invoice version: expected %d, found max %d", v.Number, maxAfter)).
				WithDetail("invoice_id", invoiceID).
				WithDetail("version", v.Number)
		}

		inv.ActiveVersionID = &v.ID
		inv.Touch()
		if err := s.repo.Update(ctx, inv); err != nil {
			return err
		}

		created = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice version added",
		"invoice_id", invoiceID, "version", created.Number, "file", created.FileName)
	return created, nil
}

// DeleteVersion removes a non-active version. The active version is
// protected: deleting it would leave the invoice pointing at nothing.
func (s *Service) DeleteVersion(ctx context.Context, versionID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.repo.GetVersion(ctx, versionID)
		if err != nil {
			return err
		}
		inv, err := s.repo.GetForUpdate(ctx, v.InvoiceID)
		if err != nil {
			return err
		}

		month, err := s.months.GetByID(ctx, inv.ReportMonthID)
		if err != nil {
			return err
		}
		if month.IsClosed {
			return apperror.NewPeriodClosed(month.Period())
		}

		if inv.IsActive(versionID) {
			return apperror.NewBusinessRule(apperror.CodeActiveVersion,
				"active version cannot be deleted").
				WithDetail("invoice_id", inv.ID).
				WithDetail("version", v.Number)
		}
		return s.repo.DeleteVersion(ctx, versionID)
	})
}

// ParseResults carries the outcome of parsing one uploaded workbook.
type ParseResults struct {
	Items  []*Item
	Errors []*ParsingError
}

// AttachParseResults persists parsed items and diagnostics for a version.
// Called once per version, right after AddVersion; items are immutable
// afterwards.
func (s *Service) AttachParseResults(ctx context.Context, versionID id.ID, results ParseResults) error {
	for _, item := range results.Items {
		item.VersionID = versionID
		if err := item.Validate(ctx); err != nil {
			return err
		}
	}
	for _, perr := range results.Errors {
		perr.VersionID = versionID
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetVersion(ctx, versionID); err != nil {
			return err
		}
		existing, err := s.repo.ListItems(ctx, versionID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return apperror.NewConflict("version already has parse results").
				WithDetail("version_id", versionID)
		}

		if len(results.Items) > 0 {
			if err := s.repo.CreateItems(ctx, results.Items); err != nil {
				return err
			}
		}
		if len(results.Errors) > 0 {
			if err := s.repo.CreateParsingErrors(ctx, results.Errors); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves an invoice header.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	if filter.OrderBy == "" {
		filter.OrderBy = DefaultListFilter().OrderBy
	}
	return s.repo.List(ctx, filter)
}

// Versions lists all versions of an invoice, oldest first.
func (s *Service) Versions(ctx context.Context, invoiceID id.ID) ([]*Version, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, invoiceID)
}

// GetVersion retrieves a single version row.
func (s *Service) GetVersion(ctx context.Context, versionID id.ID) (*Version, error) {
	return s.repo.GetVersion(ctx, versionID)
}

// VersionContent returns the items and diagnostics of one version.
func (s *Service) VersionContent(ctx context.Context, versionID id.ID) ([]*Item, []*ParsingError, error) {
	if _, err := s.repo.GetVersion(ctx, versionID); err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	perrs, err := s.repo.ListParsingErrors(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	return items, perrs, nil
}

// ActiveItems returns the items of the invoice's active version, or an
// empty slice when the invoice has no versions.
func (s *Service) ActiveItems(ctx context.Context, invoiceID id.ID) ([]*Item, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.ActiveVersionID == nil {
		return []*Item{}, nil
	}
	return s.repo.ListItems(ctx, *inv.ActiveVersionID)
}

func (s *Service) checkMonth(month *reportmonth.ReportMonth, inv *Invoice) error {
	if month.IsClosed {
		return apperror.NewPeriodClosed(month.Period())
	}
	if !month.Contains(inv.Date) {
		return apperror.NewValidation("invoice date must fall inside the report month").
			WithDetail("date", inv.Date.Format("2006-01-02")).
			WithDetail("period", month.Period())
	}
	return nil
}

func duplicateNumber(number int, period string) error {
	return apperror.NewDuplicate("invoice", "number", fmt.Sprintf("%d", number)).
		WithDetail("period", period)
}
