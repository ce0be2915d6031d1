package dto

import "time"

// RegisterRequest is the JSON body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=120"`
	Country  string `json:"country" binding:"required,min=1,max=120"`
	Phone    string `json:"phone" binding:"required,min=1,max=32"`
	Password string `json:"password" binding:"required,min=1"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateAccountRequest is the JSON body for PUT /api/users/:username.
// nil = leave the field as is.
type UpdateAccountRequest struct {
	Country  *string `json:"country" binding:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone" binding:"omitempty,min=1,max=32"`
	Password *string `json:"password" binding:"omitempty,min=1"`
}

// ForgotPasswordRequest is the JSON body for POST /api/forgot-password.
type ForgotPasswordRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResetPasswordRequest is the JSON body for POST /api/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=1"`
}

// AccountResponse is the sanitized view of an account. It never carries
// the password hash.
type AccountResponse struct {
	Username  string    `json:"username"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
