// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"novastore/internal/domain"

	"github.com/google/uuid"
)

// AdminUserID is the fixed user id of the configured administrator.
const AdminUserID = "admin"

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// AdminCredentials identify the single administrator account.
type AdminCredentials struct {
	Email    string
	Password string
}

// AuthService resolves login and signup requests against the configured
// administrator and the stored viewer accounts.
type AuthService struct {
	viewers     domain.ViewerRepository
	adminEmail  string
	adminDigest [sha256.Size]byte
	pepper      string

	now   func() time.Time
	newID func() string
}

// NewAuthService creates a new authentication service. The pepper is mixed
// into every viewer password digest and must not be empty.
func NewAuthService(viewers domain.ViewerRepository, admin AdminCredentials, pepper string) (*AuthService, error) {
	if strings.TrimSpace(pepper) == "" {
		return nil, errors.New("auth: password pepper is required")
	}
	adminEmail := domain.NormalizeEmail(admin.Email)
	if adminEmail == "" || admin.Password == "" {
		return nil, errors.New("auth: admin email and password are required")
	}
	return &AuthService{
		viewers:     viewers,
		adminEmail:  adminEmail,
		adminDigest: sha256.Sum256([]byte(admin.Password)),
		pepper:      pepper,
		now:         time.Now,
		newID:       func() string { return "viewer-" + uuid.NewString() },
	}, nil
}

// WithViewers returns a copy of the service backed by a different viewer
// repository. The HTTP adapter uses it for per-request cookie storage.
func (s *AuthService) WithViewers(viewers domain.ViewerRepository) *AuthService {
	cp := *s
	cp.viewers = viewers
	return &cp
}

// AdminEmail returns the normalized administrator email.
func (s *AuthService) AdminEmail() string {
	return s.adminEmail
}

// Authenticate checks an email and password. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	normalized := domain.NormalizeEmail(email)

	if ConstantTimeCompare(normalized, s.adminEmail) {
		digest := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare(digest[:], s.adminDigest[:]) == 1 {
			return &domain.SessionUser{UserID: AdminUserID, Email: s.adminEmail, Role: domain.RoleAdmin}, nil
		}
	}

	viewer, err := s.viewers.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}

	// The digest is computed whether or not the email is known.
	expected := HashViewerPassword(s.pepper, normalized, password)
	stored := ""
	if viewer != nil {
		stored = viewer.PasswordHash
	}
	if !ConstantTimeCompare(expected, stored) || viewer == nil {
		return nil, ErrInvalidCredentials
	}

	return &domain.SessionUser{UserID: viewer.UserID, Email: viewer.Email, Role: domain.RoleViewer}, nil
}

// Register creates a viewer account and returns its session identity.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == s.adminEmail {
		return nil, ErrReservedEmail
	}

	existing, err := s.viewers.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	created := domain.StoredViewerUser{
		UserID:       s.newID(),
		Email:        normalized,
		PasswordHash: HashViewerPassword(s.pepper, normalized, password),
		Role:         domain.RoleViewer,
		CreatedAt:    s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.viewers.Append(ctx, created); err != nil {
		if errors.Is(err, domain.ErrDuplicateViewer) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("append viewer: %w", err)
	}

	return &domain.SessionUser{UserID: created.UserID, Email: created.Email, Role: domain.RoleViewer}, nil
}

// ResolveSSO maps an identity verified by the SSO provider to a session.
// Only the administrator and already registered viewers are accepted.
func (s *AuthService) ResolveSSO(ctx context.Context, email string) (*domain.SessionUser, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrSSOUnknownUser
	}
	if normalized == s.adminEmail {
		return &domain.SessionUser{UserID: AdminUserID, Email: s.adminEmail, Role: domain.RoleAdmin}, nil
	}

	viewer, err := s.viewers.FindByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}
	if viewer == nil {
		return nil, ErrSSOUnknownUser
	}
	return &domain.SessionUser{UserID: viewer.UserID, Email: viewer.Email, Role: domain.RoleViewer}, nil
}

// ValidateLogin checks the login form before authentication.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingFields
	}
	return nil
}

// ValidateSignup checks the signup form before registration.
func ValidateSignup(email, password, confirm string) error {
	if strings.TrimSpace(email) == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// HashViewerPassword computes the stored digest for a viewer password.
func HashViewerPassword(pepper, email, password string) string {
	sum := sha256.Sum256([]byte(pepper + ":" + email + ":" + password))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
