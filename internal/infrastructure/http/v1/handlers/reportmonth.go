package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partsledger/internal/domain/reportmonth"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// ReportMonthHandler serves the reporting period lifecycle.
type ReportMonthHandler struct {
	*BaseHandler
	service *reportmonth.Service
}

// NewReportMonthHandler creates the report month handler.
func NewReportMonthHandler(base *BaseHandler, service *reportmonth.Service) *ReportMonthHandler {
	return &ReportMonthHandler{BaseHandler: base, service: service}
}

// List handles GET /report-months.
func (h *ReportMonthHandler) List(c *gin.Context) {
	var query dto.ReportMonthFilter
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      dto.FromReportMonths(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /report-months/:id.
func (h *ReportMonthHandler) Get(c *gin.Context) {
	monthID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	month, err := h.service.GetByID(c.Request.Context(), monthID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReportMonth(month))
}

// Create handles POST /report-months.
func (h *ReportMonthHandler) Create(c *gin.Context) {
	var req dto.CreateReportMonthRequest
	if !h.BindJSON(c, &req) {
		return
	}

	month, err := h.service.Create(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReportMonth(month))
}

// Update handles PUT /report-months/:id.
func (h *ReportMonthHandler) Update(c *gin.Context) {
	monthID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateReportMonthRequest
	if !h.BindJSON(c, &req) {
		return
	}

	month, err := h.service.Update(c.Request.Context(), monthID, req.Year, req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReportMonth(month))
}

// Close handles POST /report-months/:id/close.
func (h *ReportMonthHandler) Close(c *gin.Context) {
	monthID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	month, err := h.service.Close(c.Request.Context(), monthID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReportMonth(month))
}

// Reopen handles POST /report-months/:id/reopen.
func (h *ReportMonthHandler) Reopen(c *gin.Context) {
	monthID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	month, err := h.service.Reopen(c.Request.Context(), monthID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReportMonth(month))
}

// Delete handles DELETE /report-months/:id.
func (h *ReportMonthHandler) Delete(c *gin.Context) {
	monthID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), monthID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
