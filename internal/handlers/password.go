package handlers

import (
	"errors"
	"net/http"

	"github.com/Codedeveloper-MT/Vigilent-login/internal/dto"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/service"

	"github.com/gin-gonic/gin"
)

// PasswordHandler handles the reset-token flow. The old behavior of
// returning the stored password is gone: a token is issued instead and the
// stored secret is only ever replaced, never revealed.
type PasswordHandler struct {
	svc *service.AccountService
}

// NewPasswordHandler returns a new PasswordHandler.
func NewPasswordHandler(svc *service.AccountService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

// Forgot godoc
// @Summary      Request a password-reset token
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ForgotPasswordRequest  true  "Username"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /forgot-password [post]
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	token, err := h.svc.RequestPasswordReset(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no account found with that username"})
			return
		}
		logAndFail(c, "failed to create reset token", err)
		return
	}
	// No mail collaborator in this demo; the token goes back to the caller.
	c.JSON(http.StatusOK, gin.H{"success": true, "reset_token": token})
}

// Reset godoc
// @Summary      Set a new password with a reset token
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ResetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /reset-password [post]
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and password are required"})
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken), errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFound):
			// Account deleted between issue and consume.
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidResetToken.Error()})
		default:
			logAndFail(c, "failed to reset password", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
