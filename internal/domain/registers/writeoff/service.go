package writeoff

import (
	"context"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/core/types"
	"partsledger/internal/domain"
	"partsledger/internal/domain/reportmonth"
	"partsledger/pkg/logger"
)

// Service implements write-off fact operations.
type Service struct {
	repo      Repository
	months    reportmonth.Repository
	txManager tx.Manager
}

// NewService creates a write-off service.
func NewService(repo Repository, months reportmonth.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		months:    months,
		txManager: txManager,
	}
}

// Create records a new fact. The owning report month must exist and be
// open; canceled history in closed months stays untouchable.
func (s *Service) Create(ctx context.Context, fact *Fact) error {
	if err := fact.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		month, err := s.months.GetByID(ctx, fact.ReportMonthID)
		if err != nil {
			return err
		}
		if month.IsClosed {
			return apperror.NewPeriodClosed(month.Period())
		}
		return s.repo.Create(ctx, fact)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "write-off fact recorded",
		"id", fact.ID, "source", string(fact.Source), "spare_part_id", fact.SparePartID)
	return nil
}

// Cancel flips a fact to canceled. Idempotent: canceling a canceled fact
// succeeds and changes nothing. There is no retroactive stock adjustment;
// reports simply exclude canceled facts.
func (s *Service) Cancel(ctx context.Context, factID id.ID) (*Fact, error) {
	var result *Fact
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		fact, err := s.repo.GetForUpdate(ctx, factID)
		if err != nil {
			return err
		}
		if fact.Cancel() {
			if err := s.repo.UpdateStatus(ctx, factID, StatusCanceled); err != nil {
				return err
			}
		}
		result = fact
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "write-off fact canceled", "id", factID)
	return result, nil
}

// CloneAsManual records a new manual fact carrying the part and report
// month of an existing fact. A nil snapshot keeps the source snapshot.
// The source fact keeps its status; this is the correction path after
// Cancel.
func (s *Service) CloneAsManual(ctx context.Context, sourceID id.ID, quantity types.Quantity,
	factDate time.Time, snapshot *EquipmentSnapshot) (*Fact, error) {

	source, err := s.repo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	snap := source.EquipmentSnapshot
	if snapshot != nil {
		snap = *snapshot
	}
	clone := source.CloneAsManual(quantity, factDate, snap)
	if err := s.Create(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// GetByID retrieves a fact.
func (s *Service) GetByID(ctx context.Context, factID id.ID) (*Fact, error) {
	return s.repo.GetByID(ctx, factID)
}

// List retrieves facts with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Fact], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	if filter.OrderBy == "" {
		filter.OrderBy = DefaultListFilter().OrderBy
	}
	return s.repo.List(ctx, filter)
}
