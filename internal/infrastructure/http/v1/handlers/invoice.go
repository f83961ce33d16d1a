package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"partsledger/internal/core/apperror"
	"partsledger/internal/domain/documents/invoice"
	"partsledger/internal/infrastructure/http/v1/dto"
	"partsledger/internal/infrastructure/ingest"
	"partsledger/internal/infrastructure/storage/blob"
	"partsledger/pkg/logger"
)

// InvoiceHandler serves invoice headers, versions and parsed content.
type InvoiceHandler struct {
	*BaseHandler
	service  *invoice.Service
	blobs    *blob.Store
	resolver *ingest.Resolver
}

// NewInvoiceHandler creates the invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, blobs *blob.Store,
	resolver *ingest.Resolver) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service, blobs: blobs, resolver: resolver}
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	var query dto.InvoiceFilter
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid filter id").WithCause(err))
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromInvoices(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reference id").WithCause(err))
		return
	}

	if err := h.service.Create(c.Request.Context(), inv); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// Update handles PUT /invoices/:id.
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv := &invoice.Invoice{}
	inv.ID = invoiceID
	if err := req.ApplyTo(inv); err != nil {
		h.Error(c, apperror.NewValidation("invalid reference id").WithCause(err))
		return
	}

	if err := h.service.Update(c.Request.Context(), inv); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// Delete handles DELETE /invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), invoiceID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListVersions handles GET /invoices/:id/versions.
func (h *InvoiceHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	versions, err := h.service.Versions(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]*dto.VersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, dto.FromVersion(v, inv.ActiveVersionID))
	}
	h.OK(c, out)
}

// UploadVersion handles POST /invoices/:id/versions. The uploaded workbook
// is validated, stored, appended as the next version and parsed; parse
// diagnostics are recorded, not returned as failures.
func (h *InvoiceHandler) UploadVersion(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithCause(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read uploaded file").WithCause(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxFileSize+1))
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read uploaded file").WithCause(err))
		return
	}

	if err := ingest.ValidateWorkbook(data, fileHeader.Filename); err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	ref, err := h.blobs.Put(ctx, data)
	if err != nil {
		h.Error(c, err)
		return
	}

	version, err := h.service.AddVersion(ctx, invoiceID, invoice.FileUpload{
		Ref:  ref,
		Name: fileHeader.Filename,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	parsed := ingest.ParseWorkbook(data)
	results, err := h.resolver.Resolve(ctx, inv.CompanyID, parsed)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.AttachParseResults(ctx, version.ID, results); err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(ctx, "invoice version uploaded",
		"invoice_id", invoiceID,
		"version", version.Number,
		"items", len(results.Items),
		"parse_errors", len(results.Errors),
	)

	c.JSON(http.StatusCreated, dto.UploadVersionResponse{
		Version:    dto.FromVersion(version, &version.ID),
		ItemCount:  len(results.Items),
		ErrorCount: len(results.Errors),
	})
}

// DeleteVersion handles DELETE /invoices/:id/versions/:versionId.
func (h *InvoiceHandler) DeleteVersion(c *gin.Context) {
	versionID, ok := h.ParseID(c, "versionId")
	if !ok {
		return
	}

	if err := h.service.DeleteVersion(c.Request.Context(), versionID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// VersionContent handles GET /invoices/:id/versions/:versionId/content.
func (h *InvoiceHandler) VersionContent(c *gin.Context) {
	versionID, ok := h.ParseID(c, "versionId")
	if !ok {
		return
	}

	items, errs, err := h.service.VersionContent(c.Request.Context(), versionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewVersionContentResponse(items, errs))
}

// DownloadVersion handles GET /invoices/:id/versions/:versionId/file.
// Streams the originally uploaded workbook back to the caller.
func (h *InvoiceHandler) DownloadVersion(c *gin.Context) {
	ctx := c.Request.Context()

	versionID, ok := h.ParseID(c, "versionId")
	if !ok {
		return
	}

	version, err := h.service.GetVersion(ctx, versionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	data, err := h.blobs.Get(ctx, version.FileRef)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", version.FileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ActiveItems handles GET /invoices/:id/items - items of the active version.
func (h *InvoiceHandler) ActiveItems(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ActiveItems(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]*dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, dto.FromItem(item))
	}
	h.OK(c, out)
}
