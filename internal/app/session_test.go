package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"novastore/internal/domain"

	jwt "github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T, now time.Time) *SessionCodec {
	t.Helper()
	c, err := NewSessionCodec("test-secret")
	if err != nil {
		t.Fatalf("NewSessionCodec: %v", err)
	}
	c.now = func() time.Time { return now }
	return c
}

var testViewer = domain.SessionUser{UserID: "viewer-1", Email: "v@x.com", Role: domain.RoleViewer}

func TestSessionCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t, time.Now())
	for _, remember := range []bool{false, true} {
		token, err := c.Issue(testViewer, remember)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		got, err := c.Parse(token)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if *got != testViewer {
			t.Errorf("expected %+v, got %+v", testViewer, *got)
		}
	}
}

func TestSessionCodec_RememberSetsExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, now)

	for _, tt := range []struct {
		remember bool
		wantExp  bool
	}{{false, false}, {true, true}} {
		token, err := c.Issue(testViewer, tt.remember)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		claims := sessionClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			t.Fatalf("ParseUnverified: %v", err)
		}
		if (claims.ExpiresAt != nil) != tt.wantExp {
			t.Fatalf("remember=%v: unexpected expiry %v", tt.remember, claims.ExpiresAt)
		}
		if tt.wantExp && !claims.ExpiresAt.Time.Equal(now.Add(RememberMeMaxAge)) {
			t.Errorf("expected expiry %v, got %v", now.Add(RememberMeMaxAge), claims.ExpiresAt.Time)
		}
	}
}

func TestSessionCodec_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	c := newTestCodec(t, issuedAt)
	token, err := c.Issue(testViewer, true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c.now = time.Now
	if _, err := c.Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionCodec_Tampered(t *testing.T) {
	c := newTestCodec(t, time.Now())
	token, err := c.Issue(testViewer, false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Re-sign with another secret: structurally valid, wrong key.
	other, err := NewSessionCodec("another-secret")
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.Issue(domain.SessionUser{UserID: "admin", Email: "x@y.z", Role: domain.RoleAdmin}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(forged); !errors.Is(err, ErrSessionTampered) {
		t.Errorf("expected ErrSessionTampered, got %v", err)
	}

	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := c.Parse(strings.Join(parts, ".")); !errors.Is(err, ErrSessionTampered) {
		t.Errorf("expected ErrSessionTampered for flipped signature, got %v", err)
	}
}

func TestSessionCodec_Malformed(t *testing.T) {
	c := newTestCodec(t, time.Now())
	for _, token := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := c.Parse(token); !errors.Is(err, ErrSessionInvalid) {
			t.Errorf("Parse(%q): expected ErrSessionInvalid, got %v", token, err)
		}
	}
}

func TestSessionCodec_RejectsBadShape(t *testing.T) {
	c := newTestCodec(t, time.Now())
	if _, err := c.Issue(domain.SessionUser{UserID: "x", Email: "x@y.z", Role: "owner"}, false); err == nil {
		t.Error("expected Issue to reject unknown role")
	}

	// A correctly signed token carrying an invalid role is still rejected.
	claims := sessionClaims{
		User:             domain.SessionUser{UserID: "x", Email: "x@y.z", Role: "owner"},
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionCodec_RejectsNoneAlg(t *testing.T) {
	c := newTestCodec(t, time.Now())
	claims := sessionClaims{User: testViewer}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Parse(token); err == nil {
		t.Error("expected unsigned token to be rejected")
	}
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("secret", SessionKeyInfo, 32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DeriveKey("secret", ViewerKeyInfo, 32)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("unexpected key lengths %d, %d", len(a), len(b))
	}
	if string(a) == string(b) {
		t.Error("keys for different purposes must differ")
	}
	if _, err := DeriveKey("  ", SessionKeyInfo, 32); err == nil {
		t.Error("expected error for blank secret")
	}
}
