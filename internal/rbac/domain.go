package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a named permission grouping.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability on a resource. The
// (Resource, Action) pair is what authorization matches against; Name is a
// unique human-readable label.
type Permission struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Resource    string
	Action      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRole links a user to a role.
type UserRole struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	RoleID    uuid.UUID
	CreatedAt time.Time
}

// RolePermission ties a permission to a role.
type RolePermission struct {
	ID           uuid.UUID
	RoleID       uuid.UUID
	PermissionID uuid.UUID
	CreatedAt    time.Time
}

// NewPermission carries the fields persisted when creating a permission.
type NewPermission struct {
	Name        string
	Description *string
	Resource    string
	Action      string
}
