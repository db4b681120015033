package domain

import "time"

// DefaultUserRole is assigned to accounts that never set an explicit role.
const DefaultUserRole = "user"

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
