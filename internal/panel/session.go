package panel

import (
	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/auth"
)

// User is the signed-in user as the panel sees it.
type User struct {
	ID           uuid.UUID
	Name         string
	OriginalRole string
}

// Session is the ambient user context, passed explicitly into the controller.
// A nil User means nobody is signed in.
type Session struct {
	User *User
}

// Elevated reports whether mutation affordances are available.
func (s Session) Elevated() bool {
	return s.User != nil && s.User.OriginalRole == auth.ElevatedRole
}

// sameUser reports whether a and b refer to the same signed-in identity.
func sameUser(a, b Session) bool {
	switch {
	case a.User == nil && b.User == nil:
		return true
	case a.User == nil || b.User == nil:
		return false
	default:
		return a.User.ID == b.User.ID
	}
}
