package company

import (
	"partsledger/internal/core/tx"
	"partsledger/internal/domain"
	"partsledger/pkg/numerator"
)

// Service provides business logic for the Company catalog.
type Service struct {
	*domain.CatalogService[*Company]
	repo Repository
}

// NewService creates a new Company service.
func NewService(repo Repository, txManager tx.Manager, num *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "company",
		CodePrefix: "CO",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}
