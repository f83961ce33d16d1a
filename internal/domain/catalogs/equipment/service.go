package equipment

import (
	"context"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/internal/domain/catalogs/company"
	"partsledger/pkg/numerator"
)

// Service provides business logic for the Equipment catalog.
type Service struct {
	*domain.CatalogService[*Equipment]
	repo      Repository
	companies company.Repository
}

// NewService creates a new Equipment service.
func NewService(repo Repository, companies company.Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Equipment]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "equipment",
		CodePrefix: "EQ",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		companies:      companies,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkReferences)
	base.Hooks().On(domain.BeforeUpdate, svc.checkReferences)

	return svc
}

func (s *Service) checkReferences(ctx context.Context, e *Equipment) error {
	exists, err := s.companies.Exists(ctx, e.CompanyID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NewValidation("referenced company does not exist").
			WithDetail("company_id", e.CompanyID)
	}

	if existing, err := s.repo.FindByInventoryNumber(ctx, e.InventoryNumber); err == nil {
		if existing.ID != e.ID {
			return apperror.NewDuplicate("equipment", "inventory_number", e.InventoryNumber)
		}
	} else if !apperror.IsNotFound(err) {
		return err
	}

	taken, err := s.repo.ExistsSequenceNumber(ctx, e.CompanyID, e.SequenceNumber, e.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.NewDuplicate("equipment", "sequence_number", "").
			WithDetail("company_id", e.CompanyID).
			WithDetail("sequence_number", e.SequenceNumber)
	}
	return nil
}

// FindByInventoryNumber retrieves equipment by inventory tag.
func (s *Service) FindByInventoryNumber(ctx context.Context, inventoryNumber string) (*Equipment, error) {
	return s.repo.FindByInventoryNumber(ctx, inventoryNumber)
}

// ListByCompany returns equipment belonging to one company.
func (s *Service) ListByCompany(ctx context.Context, companyID id.ID) ([]*Equipment, error) {
	return s.repo.ListByCompany(ctx, companyID)
}
