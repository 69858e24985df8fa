package app

import (
	"crypto/sha256"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Key derivation labels. Each cookie gets its own key from the signing secret.
const (
	SessionKeyInfo = "novastore session"
	ViewerKeyInfo  = "novastore users"
)

// DeriveKey expands the signing secret into an n-byte key bound to info.
func DeriveKey(secret, info string, n int) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	key := make([]byte, n)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
