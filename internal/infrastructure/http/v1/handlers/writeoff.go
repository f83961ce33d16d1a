package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partsledger/internal/core/apperror"
	"partsledger/internal/domain/registers/writeoff"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// WriteOffHandler serves the write-off fact register.
type WriteOffHandler struct {
	*BaseHandler
	service *writeoff.Service
}

// NewWriteOffHandler creates the write-off handler.
func NewWriteOffHandler(base *BaseHandler, service *writeoff.Service) *WriteOffHandler {
	return &WriteOffHandler{BaseHandler: base, service: service}
}

// List handles GET /write-offs.
func (h *WriteOffHandler) List(c *gin.Context) {
	var query dto.WriteOffFilter
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
		Items:      dto.FromWriteOffs(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /write-offs/:id.
func (h *WriteOffHandler) Get(c *gin.Context) {
	factID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	fact, err := h.service.GetByID(c.Request.Context(), factID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromWriteOff(fact))
}

// Create handles POST /write-offs - record a manual fact.
func (h *WriteOffHandler) Create(c *gin.Context) {
	var req dto.CreateWriteOffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	fact, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid reference id").WithCause(err))
		return
	}

	if err := h.service.Create(c.Request.Context(), fact); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromWriteOff(fact))
}

// Cancel handles POST /write-offs/:id/cancel. Idempotent; the fact row
// stays in place with its values intact.
func (h *WriteOffHandler) Cancel(c *gin.Context) {
	factID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	fact, err := h.service.Cancel(c.Request.Context(), factID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromWriteOff(fact))
}

// Clone handles POST /write-offs/:id/clone - re-record with corrections.
func (h *WriteOffHandler) Clone(c *gin.Context) {
	factID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CloneWriteOffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	clone, err := h.service.CloneAsManual(c.Request.Context(), factID, req.Quantity, req.FactDate, req.Snapshot())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromWriteOff(clone))
}
