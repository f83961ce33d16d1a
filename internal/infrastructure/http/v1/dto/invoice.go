package dto

import (
	"time"

	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
	"partsledger/internal/domain/documents/invoice"
)

// --- Request DTOs ---

// CreateInvoiceRequest is the request body for creating an invoice header.
type CreateInvoiceRequest struct {
	Number        int       `json:"number" binding:"required"`
	Date          time.Time `json:"date" binding:"required" time_format:"2006-01-02"`
	CompanyID     string    `json:"companyId" binding:"required"`
	ReportMonthID string    `json:"reportMonthId" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return nil, err
	}
	monthID, err := id.Parse(r.ReportMonthID)
	if err != nil {
		return nil, err
	}
	return invoice.New(r.Number, r.Date, companyID, monthID), nil
}

// UpdateInvoiceRequest is the request body for updating an invoice header.
type UpdateInvoiceRequest struct {
	Number        int       `json:"number" binding:"required"`
	Date          time.Time `json:"date" binding:"required" time_format:"2006-01-02"`
	CompanyID     string    `json:"companyId" binding:"required"`
	ReportMonthID string    `json:"reportMonthId" binding:"required"`
	RowVersion    int       `json:"rowVersion" binding:"required,min=1"`
}

// ApplyTo applies update DTO to an existing entity.
func (r *UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) error {
	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return err
	}
	monthID, err := id.Parse(r.ReportMonthID)
	if err != nil {
		return err
	}
	inv.Number = r.Number
	inv.Date = r.Date
	inv.CompanyID = companyID
	inv.ReportMonthID = monthID
	inv.RowVersion = r.RowVersion
	return nil
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	ReportMonthID string `form:"reportMonthId"`
	CompanyID     string `form:"companyId"`
	Number        *int   `form:"number"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// ToFilter converts query parameters to the repository filter.
func (f *InvoiceFilter) ToFilter() (invoice.ListFilter, error) {
	filter := invoice.DefaultListFilter()
	if f.ReportMonthID != "" {
		monthID, err := id.Parse(f.ReportMonthID)
		if err != nil {
			return filter, err
		}
		filter.ReportMonthID = &monthID
	}
	if f.CompanyID != "" {
		companyID, err := id.Parse(f.CompanyID)
		if err != nil {
			return filter, err
		}
		filter.CompanyID = &companyID
	}
	filter.Number = f.Number
	if f.Limit > 0 {
		filter.Limit = f.Limit
	}
	filter.Offset = f.Offset
	return filter, nil
}

// --- Response DTOs ---

// InvoiceResponse is the response body for an invoice header.
type InvoiceResponse struct {
	ID              string    `json:"id"`
	Number          int       `json:"number"`
	Date            time.Time `json:"date"`
	CompanyID       string    `json:"companyId"`
	ReportMonthID   string    `json:"reportMonthId"`
	ActiveVersionID *string   `json:"activeVersionId,omitempty"`
	RowVersion      int       `json:"rowVersion"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FromInvoice creates response DTO from domain entity.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		Date:          inv.Date,
		CompanyID:     inv.CompanyID.String(),
		ReportMonthID: inv.ReportMonthID.String(),
		RowVersion:    inv.RowVersion,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if inv.ActiveVersionID != nil {
		v := inv.ActiveVersionID.String()
		resp.ActiveVersionID = &v
	}
	return resp
}

// FromInvoices maps a slice of invoices.
func FromInvoices(invoices []*invoice.Invoice) []*InvoiceResponse {
	out := make([]*InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, FromInvoice(inv))
	}
	return out
}

// VersionResponse is the response body for an invoice version.
type VersionResponse struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	Version   int       `json:"version"`
	FileName  string    `json:"fileName"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromVersion creates response DTO from a version row.
func FromVersion(v *invoice.Version, activeID *id.ID) *VersionResponse {
	return &VersionResponse{
		ID:        v.ID.String(),
		InvoiceID: v.InvoiceID.String(),
		Version:   v.Number,
		FileName:  v.FileName,
		IsActive:  activeID != nil && *activeID == v.ID,
		CreatedAt: v.CreatedAt,
	}
}

// ItemResponse is the response body for a parsed line item.
type ItemResponse struct {
	ID          string         `json:"id"`
	SparePartID string         `json:"sparePartId"`
	Name        string         `json:"name"`
	Quantity    types.Quantity `json:"quantity"`
	UnitID      *string        `json:"unitId,omitempty"`
	UnitUnknown bool           `json:"unitUnknown"`
}

// FromItem creates response DTO from a line item.
func FromItem(item *invoice.Item) *ItemResponse {
	resp := &ItemResponse{
		ID:          item.ID.String(),
		SparePartID: item.SparePartID.String(),
		Name:        item.Name,
		Quantity:    item.Quantity,
		UnitUnknown: item.UnitUnknown(),
	}
	if item.UnitID != nil {
		u := item.UnitID.String()
		resp.UnitID = &u
	}
	return resp
}

// ParsingErrorResponse is the response body for a parse diagnostic.
type ParsingErrorResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Row       *int      `json:"row,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromParsingError creates response DTO from a diagnostic row.
func FromParsingError(perr *invoice.ParsingError) *ParsingErrorResponse {
	return &ParsingErrorResponse{
		ID:        perr.ID.String(),
		Message:   perr.Message,
		Row:       perr.Row,
		CreatedAt: perr.CreatedAt,
	}
}

// VersionContentResponse bundles items and diagnostics of one version.
type VersionContentResponse struct {
	Items  []*ItemResponse         `json:"items"`
	Errors []*ParsingErrorResponse `json:"errors"`
}

// NewVersionContentResponse maps version content.
func NewVersionContentResponse(items []*invoice.Item, errs []*invoice.ParsingError) *VersionContentResponse {
	resp := &VersionContentResponse{
		Items:  make([]*ItemResponse, 0, len(items)),
		Errors: make([]*ParsingErrorResponse, 0, len(errs)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, FromItem(item))
	}
	for _, perr := range errs {
		resp.Errors = append(resp.Errors, FromParsingError(perr))
	}
	return resp
}

// UploadVersionResponse reports the outcome of a workbook upload.
type UploadVersionResponse struct {
	Version    *VersionResponse `json:"version"`
	ItemCount  int              `json:"itemCount"`
	ErrorCount int              `json:"errorCount"`
}
