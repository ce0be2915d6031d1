package domain

import "time"

// Account is the domain entity for a registered user.
// PasswordHash never leaves the service layer.
type Account struct {
	ID           int64
	Username     string
	Country      string
	Phone        string
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
