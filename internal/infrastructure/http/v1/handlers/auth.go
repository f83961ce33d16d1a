package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partsledger/internal/core/apperror"
	"partsledger/internal/domain/auth"
	"partsledger/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves login and account management.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLoginResponse(token, user))
}

// Register handles POST /auth/users. Admin only, enforced by middleware.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.UserInfo{
		ID:          user.ID.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	})
}

// ChangePassword handles POST /auth/password for the authenticated user.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	subject := h.GetSubject(c)
	if subject == "" {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), subject, req.CurrentPassword, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
