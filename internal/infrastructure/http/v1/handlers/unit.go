package handlers

import (
	"partsledger/internal/domain/catalogs/unit"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is the configured generic handler for units.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler creates the unit catalog handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "unit",
		MapCreateDTO: func(req dto.CreateUnitRequest) (*unit.Unit, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) (*unit.Unit, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
		MapToDTO: func(u *unit.Unit) any {
			return dto.FromUnit(u)
		},
	})
}
