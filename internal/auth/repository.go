package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user has the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrUserRevoked is returned when revoking a user whose API key is already revoked.
var ErrUserRevoked = errors.New("user is revoked")

// UserRepository stores API-key holders and their role (ElevatedRole or ViewerRole).
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByPrefix returns the non-revoked users whose key starts with prefix.
	FindByPrefix(ctx context.Context, prefix string) ([]User, error)
	List(ctx context.Context) ([]User, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	// CountAll includes revoked users; BootstrapAdmin only runs on an empty table.
	CountAll(ctx context.Context) (int, error)
}
