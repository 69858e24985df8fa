// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"strings"
)

// ErrDuplicateViewer is returned by ViewerRepository.Append when the email is
// already registered.
var (
	ErrDuplicateViewer = errors.New("viewer email already registered")
	ErrInvalidViewer   = errors.New("viewer record is incomplete")
)

// Role is the authorization level carried by a session.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// SessionUser is the identity stored in a signed session.
type SessionUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Valid reports whether u has the shape required of a session identity.
func (u SessionUser) Valid() bool {
	return u.UserID != "" && u.Email != "" && u.Role.Valid()
}

// StoredViewerUser is a self-registered viewer account.
type StoredViewerUser struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	CreatedAt    string `json:"createdAt"`
}

// Valid reports whether u has the shape of a stored viewer record.
func (u StoredViewerUser) Valid() bool {
	return u.UserID != "" &&
		u.Email != "" &&
		u.PasswordHash != "" &&
		u.Role == RoleViewer &&
		u.CreatedAt != ""
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ViewerRepository defines the port for viewer account persistence.
// Malformed records are dropped by implementations rather than reported.
type ViewerRepository interface {
	List(ctx context.Context) ([]StoredViewerUser, error)
	FindByEmail(ctx context.Context, email string) (*StoredViewerUser, error)
	Append(ctx context.Context, user StoredViewerUser) error
}
