package dto

import (
	"partsledger/internal/core/id"
	"partsledger/internal/domain"
	"partsledger/internal/domain/catalogs/company"
	"partsledger/internal/domain/catalogs/equipment"
	"partsledger/internal/domain/catalogs/sparepart"
	"partsledger/internal/domain/catalogs/unit"
)

// CatalogFilter narrows catalog listings.
type CatalogFilter struct {
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"includeDeleted"`
	OrderBy        string `form:"orderBy"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// ToFilter converts query parameters to the repository filter.
func (f *CatalogFilter) ToFilter() domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = f.Search
	filter.IncludeDeleted = f.IncludeDeleted
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.Limit > 0 {
		filter.Limit = f.Limit
	}
	filter.Offset = f.Offset
	return filter
}

// --- Units ---

// CreateUnitRequest is the request body for creating a unit.
type CreateUnitRequest struct {
	Code    string   `json:"code"`
	Name    string   `json:"name" binding:"required"`
	Symbol  string   `json:"symbol" binding:"required"`
	Aliases []string `json:"aliases"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateUnitRequest) ToEntity() *unit.Unit {
	u := unit.NewUnit(r.Code, r.Name, r.Symbol)
	u.Aliases = r.Aliases
	return u
}

// UpdateUnitRequest is the request body for updating a unit.
type UpdateUnitRequest struct {
	Code       string   `json:"code"`
	Name       string   `json:"name" binding:"required"`
	Symbol     string   `json:"symbol" binding:"required"`
	Aliases    []string `json:"aliases"`
	Active     bool     `json:"active"`
	RowVersion int      `json:"rowVersion" binding:"required,min=1"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	u.Code = r.Code
	u.Name = r.Name
	u.Symbol = r.Symbol
	u.Aliases = r.Aliases
	u.Active = r.Active
	u.RowVersion = r.RowVersion
}

// UnitResponse is the response body for a unit.
type UnitResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	Aliases      []string `json:"aliases,omitempty"`
	Active       bool     `json:"active"`
	DeletionMark bool     `json:"deletionMark"`
	RowVersion   int      `json:"rowVersion"`
}

// FromUnit creates response DTO from domain entity.
func FromUnit(u *unit.Unit) *UnitResponse {
	return &UnitResponse{
		ID:           u.ID.String(),
		Code:         u.Code,
		Name:         u.Name,
		Symbol:       u.Symbol,
		Aliases:      u.Aliases,
		Active:       u.Active,
		DeletionMark: u.DeletionMark,
		RowVersion:   u.RowVersion,
	}
}

// --- Companies ---

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	FullName *string `json:"fullName"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() *company.Company {
	c := company.NewCompany(r.Code, r.Name)
	c.FullName = r.FullName
	return c
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name" binding:"required"`
	FullName   *string `json:"fullName"`
	Active     bool    `json:"active"`
	RowVersion int     `json:"rowVersion" binding:"required,min=1"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = r.FullName
	c.Active = r.Active
	c.RowVersion = r.RowVersion
}

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	FullName     *string `json:"fullName,omitempty"`
	Active       bool    `json:"active"`
	DeletionMark bool    `json:"deletionMark"`
	RowVersion   int     `json:"rowVersion"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		FullName:     c.FullName,
		Active:       c.Active,
		DeletionMark: c.DeletionMark,
		RowVersion:   c.RowVersion,
	}
}

// --- Equipment ---

// CreateEquipmentRequest is the request body for creating equipment.
type CreateEquipmentRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name" binding:"required"`
	InventoryNumber string `json:"inventoryNumber" binding:"required"`
	SequenceNumber  int    `json:"sequenceNumber" binding:"required,min=1"`
	CompanyID       string `json:"companyId" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateEquipmentRequest) ToEntity() (*equipment.Equipment, error) {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}
	return equipment.NewEquipment(r.Code, r.Name, r.InventoryNumber, r.SequenceNumber, companyID), nil
}

// UpdateEquipmentRequest is the request body for updating equipment.
type UpdateEquipmentRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name" binding:"required"`
	InventoryNumber string `json:"inventoryNumber" binding:"required"`
	SequenceNumber  int    `json:"sequenceNumber" binding:"required,min=1"`
	CompanyID       string `json:"companyId" binding:"required"`
	Active          bool   `json:"active"`
	RowVersion      int    `json:"rowVersion" binding:"required,min=1"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateEquipmentRequest) ApplyTo(e *equipment.Equipment) error {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return err
	}
	e.Code = r.Code
	e.Name = r.Name
	e.InventoryNumber = r.InventoryNumber
	e.SequenceNumber = r.SequenceNumber
	e.CompanyID = companyID
	e.Active = r.Active
	e.RowVersion = r.RowVersion
	return nil
}

// EquipmentResponse is the response body for equipment.
type EquipmentResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	InventoryNumber string `json:"inventoryNumber"`
	SequenceNumber  int    `json:"sequenceNumber"`
	CompanyID       string `json:"companyId"`
	Active          bool   `json:"active"`
	DeletionMark    bool   `json:"deletionMark"`
	RowVersion      int    `json:"rowVersion"`
}

// FromEquipment creates response DTO from domain entity.
func FromEquipment(e *equipment.Equipment) *EquipmentResponse {
	return &EquipmentResponse{
		ID:              e.ID.String(),
		Code:            e.Code,
		Name:            e.Name,
		InventoryNumber: e.InventoryNumber,
		SequenceNumber:  e.SequenceNumber,
		CompanyID:       e.CompanyID.String(),
		Active:          e.Active,
		DeletionMark:    e.DeletionMark,
		RowVersion:      e.RowVersion,
	}
}

// --- Spare parts ---

// CreateSparePartRequest is the request body for creating a spare part.
type CreateSparePartRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name" binding:"required"`
	UnitID     string  `json:"unitId" binding:"required"`
	CompanyID  string  `json:"companyId" binding:"required"`
	PartNumber *string `json:"partNumber"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSparePartRequest) ToEntity() (*sparepart.SparePart, error) {
	unitID, err := id.Parse(r.UnitID)
	if err != nil {
		return nil, err
	}
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}
	p := sparepart.NewSparePart(r.Code, r.Name, unitID, companyID)
	p.PartNumber = r.PartNumber
	return p, nil
}

// UpdateSparePartRequest is the request body for updating a spare part.
type UpdateSparePartRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name" binding:"required"`
	UnitID     string  `json:"unitId" binding:"required"`
	CompanyID  string  `json:"companyId" binding:"required"`
	PartNumber *string `json:"partNumber"`
	Active     bool    `json:"active"`
	RowVersion int     `json:"rowVersion" binding:"required,min=1"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateSparePartRequest) ApplyTo(p *sparepart.SparePart) error {
	unitID, err := id.Parse(r.UnitID)
	if err != nil {
		return err
	}
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return err
	}
	p.Code = r.Code
	p.Name = r.Name
	p.UnitID = unitID
	p.CompanyID = companyID
	p.PartNumber = r.PartNumber
	p.Active = r.Active
	p.RowVersion = r.RowVersion
	return nil
}

// SparePartResponse is the response body for a spare part.
type SparePartResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	UnitID       string  `json:"unitId"`
	CompanyID    string  `json:"companyId"`
	PartNumber   *string `json:"partNumber,omitempty"`
	Active       bool    `json:"active"`
	DeletionMark bool    `json:"deletionMark"`
	RowVersion   int     `json:"rowVersion"`
}

// FromSparePart creates response DTO from domain entity.
func FromSparePart(p *sparepart.SparePart) *SparePartResponse {
	return &SparePartResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		UnitID:       p.UnitID.String(),
		CompanyID:    p.CompanyID.String(),
		PartNumber:   p.PartNumber,
		Active:       p.Active,
		DeletionMark: p.DeletionMark,
		RowVersion:   p.RowVersion,
	}
}
