package handlers

import (
	"partsledger/internal/domain/catalogs/company"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// CompanyHTTPHandler is the configured generic handler for companies.
type CompanyHTTPHandler = CatalogHandler[
	*company.Company,
	dto.CreateCompanyRequest,
	dto.UpdateCompanyRequest,
]

// NewCompanyHandler creates the company catalog handler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*company.Company,
		dto.CreateCompanyRequest,
		dto.UpdateCompanyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "company",
		MapCreateDTO: func(req dto.CreateCompanyRequest) (*company.Company, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) (*company.Company, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(comp *company.Company) any {
			return dto.FromCompany(comp)
		},
	})
}
