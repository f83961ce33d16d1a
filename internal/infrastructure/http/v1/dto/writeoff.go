package dto

import (
	"time"

	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
	"partsledger/internal/domain/registers/writeoff"
)

// --- Request DTOs ---

// CreateWriteOffRequest records a manual write-off fact.
type CreateWriteOffRequest struct {
	SparePartID             string         `json:"sparePartId" binding:"required"`
	Quantity                types.Quantity `json:"quantity" binding:"required"`
	FactDate                time.Time      `json:"factDate" binding:"required" time_format:"2006-01-02"`
	ReportMonthID           string         `json:"reportMonthId" binding:"required"`
	EquipmentName           string         `json:"equipmentName" binding:"required"`
	EquipmentInventoryNo    string         `json:"equipmentInventoryNumber" binding:"required"`
	EquipmentSequenceNumber int            `json:"equipmentSequenceNumber" binding:"required"`
	CompanyName             string         `json:"companyName" binding:"required"`
}

// ToEntity converts DTO to a manual fact.
func (r *CreateWriteOffRequest) ToEntity() (*writeoff.Fact, error) {
	partID, err := id.Parse(r.SparePartID)
	if err != nil {
		return nil, err
	}
	monthID, err := id.Parse(r.ReportMonthID)
	if err != nil {
		return nil, err
	}
	snapshot := writeoff.EquipmentSnapshot{
		EquipmentName:   r.EquipmentName,
		InventoryNumber: r.EquipmentInventoryNo,
		SequenceNumber:  r.EquipmentSequenceNumber,
		CompanyName:     r.CompanyName,
	}
	return writeoff.NewFact(partID, r.Quantity, r.FactDate, monthID, snapshot,
		writeoff.SourceManual, nil), nil
}

// CloneWriteOffRequest re-records a fact with corrected values. The
// equipment snapshot is optional; when omitted the source snapshot is
// kept.
type CloneWriteOffRequest struct {
	Quantity                types.Quantity `json:"quantity" binding:"required"`
	FactDate                time.Time      `json:"factDate" binding:"required" time_format:"2006-01-02"`
	EquipmentName           string         `json:"equipmentName"`
	EquipmentInventoryNo    string         `json:"equipmentInventoryNumber"`
	EquipmentSequenceNumber int            `json:"equipmentSequenceNumber"`
	CompanyName             string         `json:"companyName"`
}

// Snapshot returns the override snapshot, or nil when no snapshot field
// was provided.
func (r *CloneWriteOffRequest) Snapshot() *writeoff.EquipmentSnapshot {
	if r.EquipmentName == "" && r.EquipmentInventoryNo == "" &&
		r.EquipmentSequenceNumber == 0 && r.CompanyName == "" {
		return nil
	}
	return &writeoff.EquipmentSnapshot{
		EquipmentName:   r.EquipmentName,
		InventoryNumber: r.EquipmentInventoryNo,
		SequenceNumber:  r.EquipmentSequenceNumber,
		CompanyName:     r.CompanyName,
	}
}

// WriteOffFilter narrows fact listings.
type WriteOffFilter struct {
	ReportMonthID string `form:"reportMonthId"`
	SparePartID   string `form:"sparePartId"`
	Source        string `form:"source"`
	Status        string `form:"status"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// ToFilter converts query parameters to the repository filter.
func (f *WriteOffFilter) ToFilter() (writeoff.ListFilter, error) {
	filter := writeoff.DefaultListFilter()
	if f.ReportMonthID != "" {
		monthID, err := id.Parse(f.ReportMonthID)
		if err != nil {
			return filter, err
		}
		filter.ReportMonthID = &monthID
	}
	if f.SparePartID != "" {
		partID, err := id.Parse(f.SparePartID)
		if err != nil {
			return filter, err
		}
		filter.SparePartID = &partID
	}
	if f.Source != "" {
		source := writeoff.Source(f.Source)
		filter.Source = &source
	}
	if f.Status != "" {
		status := writeoff.Status(f.Status)
		filter.Status = &status
	}
	if f.Limit > 0 {
		filter.Limit = f.Limit
	}
	filter.Offset = f.Offset
	return filter, nil
}

// --- Response DTOs ---

// WriteOffResponse is the response body for a write-off fact.
type WriteOffResponse struct {
	ID                      string          `json:"id"`
	SparePartID             string          `json:"sparePartId"`
	Quantity                types.Quantity  `json:"quantity"`
	FactDate                time.Time       `json:"factDate"`
	ReportMonthID           string          `json:"reportMonthId"`
	EquipmentName           string          `json:"equipmentName"`
	EquipmentInventoryNo    string          `json:"equipmentInventoryNumber"`
	EquipmentSequenceNumber int             `json:"equipmentSequenceNumber"`
	CompanyName             string          `json:"companyName"`
	InvoiceItemID           *string         `json:"invoiceItemId,omitempty"`
	Source                  writeoff.Source `json:"source"`
	Status                  writeoff.Status `json:"status"`
	CreatedAt               time.Time       `json:"createdAt"`
}

// FromWriteOff creates response DTO from domain entity.
func FromWriteOff(f *writeoff.Fact) *WriteOffResponse {
	resp := &WriteOffResponse{
		ID:                      f.ID.String(),
		SparePartID:             f.SparePartID.String(),
		Quantity:                f.Quantity,
		FactDate:                f.FactDate,
		ReportMonthID:           f.ReportMonthID.String(),
		EquipmentName:           f.EquipmentName,
		EquipmentInventoryNo:    f.InventoryNumber,
		EquipmentSequenceNumber: f.SequenceNumber,
		CompanyName:             f.CompanyName,
		Source:                  f.Source,
		Status:                  f.Status,
		CreatedAt:               f.CreatedAt,
	}
	if f.InvoiceItemID != nil {
		v := f.InvoiceItemID.String()
		resp.InvoiceItemID = &v
	}
	return resp
}

// FromWriteOffs maps a slice of facts.
func FromWriteOffs(facts []*writeoff.Fact) []*WriteOffResponse {
	out := make([]*WriteOffResponse, 0, len(facts))
	for _, f := range facts {
		out = append(out, FromWriteOff(f))
	}
	return out
}
