package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krbank/backoffice/internal/cqrs"
	"github.com/krbank/backoffice/internal/middleware"
	"github.com/krbank/backoffice/internal/query"
)

type Authenticator interface {
	Login(context.Context, cqrs.LoginCommand) (*query.AuthResult, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (*query.AuthResult, error)
}

type AuthHandler struct {
	auth Authenticator
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Token string `json:"token" validate:"required"`
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), cqrs.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to authenticate")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.auth.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{Token: req.Token})
	if err != nil {
		middleware.RespondWithDomainError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Logout is stateless: tokens are not tracked server-side, the client drops it.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
