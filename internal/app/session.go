package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"novastore/internal/domain"

	jwt "github.com/golang-jwt/jwt/v5"
)

// RememberMeMaxAge is the lifetime of a persistent ("remember me") session.
const RememberMeMaxAge = 7 * 24 * time.Hour

type sessionClaims struct {
	User domain.SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies session tokens. The token is the whole
// session state; there is no server-side session table.
type SessionCodec struct {
	key []byte
	now func() time.Time
}

// NewSessionCodec derives the signing key from secret.
func NewSessionCodec(secret string) (*SessionCodec, error) {
	key, err := DeriveKey(secret, SessionKeyInfo, 32)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}
	return &SessionCodec{key: key, now: time.Now}, nil
}

// Issue signs a token for user. Remembered sessions carry an expiry; others
// live as long as the browser keeps the cookie.
func (c *SessionCodec) Issue(user domain.SessionUser, remember bool) (string, error) {
	if !user.Valid() {
		return "", errors.New("session user is incomplete")
	}
	now := c.now().UTC()
	claims := sessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if remember {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(RememberMeMaxAge))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Parse verifies token and returns the embedded user. A bad signature
// returns ErrSessionTampered; anything else wrong returns ErrSessionInvalid.
func (c *SessionCodec) Parse(token string) (*domain.SessionUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}

	claims := sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrSessionTampered
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if !parsed.Valid || !claims.User.Valid() {
		return nil, ErrSessionInvalid
	}

	user := claims.User
	return &user, nil
}
