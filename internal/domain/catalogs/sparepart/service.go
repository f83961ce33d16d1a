package sparepart

import (
	"context"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/internal/domain/catalogs/company"
	"partsledger/internal/domain/catalogs/unit"
	"partsledger/pkg/numerator"
)

// Service provides business logic for the SparePart catalog.
type Service struct {
	*domain.CatalogService[*SparePart]
	repo      Repository
	units     unit.Repository
	companies company.Repository
}

// NewService creates a new SparePart service.
func NewService(repo Repository, units unit.Repository, companies company.Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*SparePart]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "spare part",
		CodePrefix: "SP",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		units:          units,
		companies:      companies,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkReferences)
	base.Hooks().On(domain.BeforeUpdate, svc.checkReferences)

	return svc
}

func (s *Service) checkReferences(ctx context.Context, p *SparePart) error {
	exists, err := s.units.Exists(ctx, p.UnitID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewValidation("referenced unit does not exist").
			WithDetail("unit_id", p.UnitID)
	}

	exists, err = s.companies.Exists(ctx, p.CompanyID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewValidation("referenced company does not exist").
			WithDetail("company_id", p.CompanyID)
	}
	return nil
}

// FindByName retrieves a part by exact name within a company.
func (s *Service) FindByName(ctx context.Context, companyID id.ID, name string) (*SparePart, error) {
	return s.repo.FindByName(ctx, companyID, name)
}

// ListByCompany returns parts belonging to one company.
func (s *Service) ListByCompany(ctx context.Context, companyID id.ID) ([]*SparePart, error) {
	return s.repo.ListByCompany(ctx, companyID)
}
