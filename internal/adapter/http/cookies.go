package adapthttp

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"novastore/internal/app"
	"novastore/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	sessionCookieName = "__novastore_session"
	viewersCookieName = "__novastore_users"
	themeCookieName   = "theme"
	langCookieName    = "lang"
	stateCookieName   = "oauth_state"

	viewersCookieMaxAge = 30 * 24 * time.Hour
	preferenceMaxAge    = 365 * 24 * time.Hour
)

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, remember bool) {
	c := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		c.MaxAge = int(app.RememberMeMaxAge.Seconds())
	}
	http.SetCookie(w, c)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ViewerCookieStore seals the viewer account list into a cookie with
// XChaCha20-Poly1305.
type ViewerCookieStore struct {
	aead cipher.AEAD
}

// NewViewerCookieStore derives the sealing key from secret.
func NewViewerCookieStore(secret string) (*ViewerCookieStore, error) {
	key, err := app.DeriveKey(secret, app.ViewerKeyInfo, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("viewer cookie: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("viewer cookie: %w", err)
	}
	return &ViewerCookieStore{aead: aead}, nil
}

var errViewerCookieTampered = errors.New("viewer cookie failed authentication")

// Seal encodes users as an opaque cookie value.
func (c *ViewerCookieStore) Seal(users []domain.StoredViewerUser) (string, error) {
	if users == nil {
		users = []domain.StoredViewerUser{}
	}
	plaintext, err := json.Marshal(users)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, []byte(viewersCookieName))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decodes a cookie value produced by Seal. Records failing the shape
// check are dropped.
func (c *ViewerCookieStore) Open(value string) ([]domain.StoredViewerUser, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("viewer cookie: %w", err)
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, errors.New("viewer cookie: too short")
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, []byte(viewersCookieName))
	if err != nil {
		return nil, errViewerCookieTampered
	}
	return app.DecodeViewers(plaintext), nil
}

// cookieViewers is a request-scoped ViewerRepository backed by the viewer
// cookie. Appended users are written back with flush.
type cookieViewers struct {
	users []domain.StoredViewerUser
	dirty bool
}

var _ domain.ViewerRepository = (*cookieViewers)(nil)

func (v *cookieViewers) List(context.Context) ([]domain.StoredViewerUser, error) {
	return v.users, nil
}

func (v *cookieViewers) FindByEmail(_ context.Context, email string) (*domain.StoredViewerUser, error) {
	return app.FindViewer(v.users, email), nil
}

func (v *cookieViewers) Append(_ context.Context, user domain.StoredViewerUser) error {
	if app.FindViewer(v.users, user.Email) != nil {
		return domain.ErrDuplicateViewer
	}
	v.users = append(v.users, user)
	v.dirty = true
	return nil
}

// authFor returns the AuthService for r and, in cookie mode, the request's
// viewer list. An unreadable viewer cookie reads as an empty list.
func (s *Server) authFor(r *http.Request) (*app.AuthService, *cookieViewers) {
	if s.viewerCookies == nil {
		return s.auth, nil
	}
	viewers := &cookieViewers{}
	if c, err := r.Cookie(viewersCookieName); err == nil && c.Value != "" {
		users, err := s.viewerCookies.Open(c.Value)
		switch {
		case errors.Is(err, errViewerCookieTampered):
			s.logger.Warn("viewer cookie failed authentication", zap.String("remote", clientIP(r)))
		case err != nil:
			s.logger.Debug("viewer cookie unreadable", zap.Error(err))
		default:
			viewers.users = users
		}
	}
	return s.auth.WithViewers(viewers), viewers
}

// flushViewers writes the viewer cookie when the request changed the list.
func (s *Server) flushViewers(w http.ResponseWriter, viewers *cookieViewers) error {
	if viewers == nil || !viewers.dirty {
		return nil
	}
	value, err := s.viewerCookies.Seal(viewers.users)
	if err != nil {
		return fmt.Errorf("seal viewers: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     viewersCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(viewersCookieMaxAge.Seconds()),
	})
	return nil
}

// preferences resolves the theme and language cookies against the defaults.
func (s *Server) preferences(r *http.Request) domain.Preferences {
	prefs := s.defaults
	if c, err := r.Cookie(themeCookieName); err == nil && domain.Theme(c.Value).Valid() {
		prefs.Theme = domain.Theme(c.Value)
	}
	if c, err := r.Cookie(langCookieName); err == nil && domain.Language(c.Value).Valid() {
		prefs.Language = domain.Language(c.Value)
	}
	return prefs
}

func (s *Server) setPreferenceCookies(w http.ResponseWriter, prefs domain.Preferences) {
	for name, value := range map[string]string{
		themeCookieName: string(prefs.Theme),
		langCookieName:  string(prefs.Language),
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(preferenceMaxAge.Seconds()),
		})
	}
}
