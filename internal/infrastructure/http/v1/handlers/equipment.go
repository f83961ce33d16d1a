package handlers

import (
	"partsledger/internal/domain/catalogs/equipment"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// EquipmentHTTPHandler is the configured generic handler for equipment.
type EquipmentHTTPHandler = CatalogHandler[
	*equipment.Equipment,
	dto.CreateEquipmentRequest,
	dto.UpdateEquipmentRequest,
]

// NewEquipmentHandler creates the equipment catalog handler.
func NewEquipmentHandler(base *BaseHandler, service *equipment.Service) *EquipmentHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*equipment.Equipment,
		dto.CreateEquipmentRequest,
		dto.UpdateEquipmentRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "equipment",
		MapCreateDTO: func(req dto.CreateEquipmentRequest) (*equipment.Equipment, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateEquipmentRequest, existing *equipment.Equipment) (*equipment.Equipment, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
		MapToDTO: func(e *equipment.Equipment) any {
			return dto.FromEquipment(e)
		},
	})
}
