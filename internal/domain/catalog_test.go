package domain_test

import (
	"testing"

	"novastore/internal/domain"
)

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already two places", 19.99, 19.99},
		{"rounds up", 10.005001, 10.01},
		{"rounds down", 10.004, 10},
		{"integer", 5, 5},
		{"negative", -1.234, -1.23},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.RoundPrice(tc.in); got != tc.want {
				t.Errorf("RoundPrice(%v) = %v; want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := domain.NormalizeEmail("  Viewer@Example.COM "); got != "viewer@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestSessionUserValid(t *testing.T) {
	tests := []struct {
		name string
		user domain.SessionUser
		want bool
	}{
		{"admin", domain.SessionUser{UserID: "admin", Email: "a@b.c", Role: domain.RoleAdmin}, true},
		{"viewer", domain.SessionUser{UserID: "viewer-1", Email: "v@b.c", Role: domain.RoleViewer}, true},
		{"unknown role", domain.SessionUser{UserID: "x", Email: "x@b.c", Role: "owner"}, false},
		{"missing id", domain.SessionUser{Email: "x@b.c", Role: domain.RoleViewer}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.Valid(); got != tc.want {
				t.Errorf("Valid() = %v; want %v", got, tc.want)
			}
		})
	}
}
