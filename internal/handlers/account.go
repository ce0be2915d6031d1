package handlers

import (
	"errors"
	"log"
	"net/http"

	dom "github.com/Codedeveloper-MT/Vigilent-login/internal/domain"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/dto"
	"github.com/Codedeveloper-MT/Vigilent-login/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles register, login and the user CRUD endpoints.
type AccountHandler struct {
	svc *service.AccountService
}

// NewAccountHandler returns a new AccountHandler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Register godoc
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "Account details"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, country, phone and password are required"})
		return
	}
	a, err := h.svc.Register(c.Request.Context(), req.Username, req.Country, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		default:
			logAndFail(c, "registration failed", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": accountToResponse(a)})
}

// Login godoc
// @Summary      Log in with username and password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	a, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no account found with that username"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		default:
			logAndFail(c, "login failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": accountToResponse(a)})
}

// Get godoc
// @Summary      Fetch an account by username
// @Tags         accounts
// @Produce      json
// @Param        username  query     string  true  "Username"
// @Success      200       {object}  dto.AccountResponse
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /users [get]
func (h *AccountHandler) Get(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	a, err := h.svc.Get(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		logAndFail(c, "failed to fetch account", err)
		return
	}
	c.JSON(http.StatusOK, accountToResponse(a))
}

// Update godoc
// @Summary      Update country, phone or password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        username  path      string                   true  "Username"
// @Param        body      body      dto.UpdateAccountRequest true  "Fields to change"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /users/{username} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	a, err := h.svc.Update(c.Request.Context(), c.Param("username"), req.Country, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logAndFail(c, "failed to update account", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": accountToResponse(a)})
}

// Delete godoc
// @Summary      Delete an account
// @Tags         accounts
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  map[string]interface{}
// @Failure      404       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /users/{username} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		logAndFail(c, "failed to delete account", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// logAndFail logs the cause with the request id and answers with a fixed
// message. Driver errors never reach the client.
func logAndFail(c *gin.Context, msg string, err error) {
	log.Printf("[%s] %s: %v", RequestID(c), msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func accountToResponse(a dom.Account) dto.AccountResponse {
	return dto.AccountResponse{
		Username:  a.Username,
		Country:   a.Country,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
	}
}
