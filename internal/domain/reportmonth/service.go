package reportmonth

import (
	"context"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/pkg/logger"
)

// Policy controls period creation rules that are deployment-specific.
type Policy struct {
	// RejectPastMonths forbids creating a month earlier than the current
	// calendar month. Historical backfill deployments turn this off.
	RejectPastMonths bool
}

// Service implements report month lifecycle operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
	policy    Policy
	now       func() time.Time
}

// NewService creates a report month service.
func NewService(repo Repository, txManager tx.Manager, policy Policy) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		policy:    policy,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create opens a new report month.
func (s *Service) Create(ctx context.Context, year, month int) (*ReportMonth, error) {
	m := New(year, month)
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	if s.policy.RejectPastMonths {
		now := s.now().UTC()
		if m.Before(now.Year(), int(now.Month())) {
			return nil, apperror.NewValidation("cannot create a report month in the past").
				WithDetail("period", m.Period())
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsPeriod(ctx, year, month, id.Nil())
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicate("report month", "period", m.Period())
		}
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "report month created", "period", m.Period(), "id", m.ID)
	return m, nil
}

// Update changes the period of an open month. Year and month of a closed
// month are immutable until it is reopened.
func (s *Service) Update(ctx context.Context, monthID id.ID, year, month int) (*ReportMonth, error) {
	var updated *ReportMonth
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, monthID)
		if err != nil {
			return err
		}

		if current.Year == year && current.Month == month {
			updated = current
			return nil
		}
		if current.IsClosed {
			return apperror.NewPeriodClosed(current.Period()).
				WithDetail("reason", "closed month period is immutable")
		}

		current.Year = year
		current.Month = month
		if err := current.Validate(ctx); err != nil {
			return err
		}
		exists, err := s.repo.ExistsPeriod(ctx, year, month, current.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicate("report month", "period", current.Period())
		}

		current.Touch()
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Close closes the month. Repeated calls succeed without changing ClosedAt.
func (s *Service) Close(ctx context.Context, monthID id.ID) (*ReportMonth, error) {
	return s.transition(ctx, monthID, true)
}

// Reopen reopens a closed month. Repeated calls succeed.
func (s *Service) Reopen(ctx context.Context, monthID id.ID) (*ReportMonth, error) {
	return s.transition(ctx, monthID, false)
}

func (s *Service) transition(ctx context.Context, monthID id.ID, close bool) (*ReportMonth, error) {
	var result *ReportMonth
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, monthID)
		if err != nil {
			return err
		}

		var changed bool
		if close {
			changed = m.Close(s.now())
		} else {
			changed = m.Reopen()
		}
		if changed {
			if err := s.repo.Update(ctx, m); err != nil {
				return err
			}
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if close {
		logger.Info(ctx, "report month closed", "period", result.Period())
	} else {
		logger.Info(ctx, "report month reopened", "period", result.Period())
	}
	return result, nil
}

// Delete removes a month that has no invoices.
func (s *Service) Delete(ctx context.Context, monthID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetForUpdate(ctx, monthID)
		if err != nil {
			return err
		}
		count, err := s.repo.CountInvoices(ctx, monthID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.NewProtected("report month", m.Period(), "invoices")
		}
		return s.repo.Delete(ctx, monthID)
	})
}

// GetByID retrieves a month by ID.
func (s *Service) GetByID(ctx context.Context, monthID id.ID) (*ReportMonth, error) {
	return s.repo.GetByID(ctx, monthID)
}

// GetByPeriod retrieves a month by (year, month).
func (s *Service) GetByPeriod(ctx context.Context, year, month int) (*ReportMonth, error) {
	return s.repo.GetByPeriod(ctx, year, month)
}

// List retrieves months with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ReportMonth], error) {
	if filter.Limit <= 0 {
		filter = mergeDefaults(filter)
	}
	return s.repo.List(ctx, filter)
}

func mergeDefaults(filter ListFilter) ListFilter {
	def := DefaultListFilter()
	if filter.Limit <= 0 {
		filter.Limit = def.Limit
	}
	if filter.OrderBy == "" {
		filter.OrderBy = def.OrderBy
	}
	return filter
}
