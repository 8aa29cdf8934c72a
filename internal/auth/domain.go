package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     *string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser carries the fields persisted on registration. Timestamps and the
// id are assigned by the store.
type NewUser struct {
	Email        string
	PasswordHash string
	FullName     *string
}

// Credentials is the result of a successful registration or login.
type Credentials struct {
	Token  string
	UserID uuid.UUID
	Email  string
}
