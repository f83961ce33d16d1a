package handlers

import (
	"partsledger/internal/domain/catalogs/sparepart"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// SparePartHTTPHandler is the configured generic handler for spare parts.
type SparePartHTTPHandler = CatalogHandler[
	*sparepart.SparePart,
	dto.CreateSparePartRequest,
	dto.UpdateSparePartRequest,
]

// NewSparePartHandler creates the spare part catalog handler.
func NewSparePartHandler(base *BaseHandler, service *sparepart.Service) *SparePartHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*sparepart.SparePart,
		dto.CreateSparePartRequest,
		dto.UpdateSparePartRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "spare part",
		MapCreateDTO: func(req dto.CreateSparePartRequest) (*sparepart.SparePart, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateSparePartRequest, existing *sparepart.SparePart) (*sparepart.SparePart, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(p *sparepart.SparePart) any {
			return dto.FromSparePart(p)
		},
	})
}
