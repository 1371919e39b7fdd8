package domain

import "time"

// Admin models an administrator account.
type Admin struct {
	ID           string
	Name         string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
