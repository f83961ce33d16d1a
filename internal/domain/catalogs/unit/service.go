package unit

import (
	"context"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/pkg/numerator"
)

// Service provides business logic for the Unit catalog.
// Composes domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Unit]
	repo Repository
}

// NewService creates a new Unit service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "unit",
		CodePrefix: "UN",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkSymbolUnique)
	base.Hooks().On(domain.BeforeUpdate, svc.checkSymbolUnique)

	return svc
}

func (s *Service) checkSymbolUnique(ctx context.Context, u *Unit) error {
	existing, err := s.repo.FindBySymbol(ctx, u.Symbol)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != u.ID {
		return apperror.NewDuplicate("unit", "symbol", u.Symbol)
	}
	return nil
}

// FindBySymbol retrieves unit by symbol.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*Unit, error) {
	return s.repo.FindBySymbol(ctx, symbol)
}

// Resolve maps a free-form label to a unit ID. Returns (Nil, false) when
// no unit matches; callers record the item with an unknown unit.
func (s *Service) Resolve(ctx context.Context, label string) (id.ID, bool, error) {
	units, err := s.repo.ListActive(ctx)
	if err != nil {
		return id.Nil(), false, err
	}
	for _, u := range units {
		if u.Matches(label) {
			return u.ID, true, nil
		}
	}
	return id.Nil(), false, nil
}
