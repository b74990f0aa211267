package auth

import (
	"time"

	"github.com/google/uuid"
)

// ElevatedRole is the only role allowed to create, edit, star or delete products.
const ElevatedRole = "super_admin"

// ViewerRole is read-only.
const ViewerRole = "viewer"

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == ElevatedRole || role == ViewerRole
}

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Role         string
	ApiKeyPrefix string
	ApiKeyHash   string
	CreatedAt    time.Time
	RevokedAt    *time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID   uuid.UUID
	UserName string
	Role     string
}

// IsElevated reports whether the identity holds the elevated role.
func (i *Identity) IsElevated() bool {
	return i != nil && i.Role == ElevatedRole
}
