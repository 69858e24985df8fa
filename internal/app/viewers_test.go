package app

import (
	"context"
	"testing"

	"novastore/internal/domain"
)

func TestCollectionViewers(t *testing.T) {
	store := newMapStore()
	repo := NewCollectionViewers(store)
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty list, got %v, %v", users, err)
	}

	u := domain.StoredViewerUser{UserID: "viewer-1", Email: "v@x.com", PasswordHash: "h", Role: domain.RoleViewer, CreatedAt: "2026-01-01T00:00:00Z"}
	if err := repo.Append(ctx, u); err != nil {
		t.Fatal(err)
	}

	found, err := repo.FindByEmail(ctx, "v@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || *found != u {
		t.Errorf("expected %+v, got %+v", u, found)
	}
	missing, err := repo.FindByEmail(ctx, "w@x.com")
	if err != nil || missing != nil {
		t.Errorf("expected nil, got %+v, %v", missing, err)
	}
}

func TestCollectionViewers_RegisterThroughAuth(t *testing.T) {
	repo := NewCollectionViewers(newMapStore())
	svc := newTestAuth(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "new@x.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	user, err := svc.Authenticate(ctx, "NEW@x.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate after Register: %v", err)
	}
	if user.Role != domain.RoleViewer {
		t.Errorf("expected viewer, got %+v", user)
	}
}

func TestDecodeViewers(t *testing.T) {
	raw := `[
		{"userId": "viewer-1", "email": "a@x.com", "passwordHash": "h", "role": "viewer", "createdAt": "t"},
		{"userId": "viewer-2", "email": "b@x.com", "passwordHash": "h", "role": "admin", "createdAt": "t"},
		{"userId": "", "email": "c@x.com", "passwordHash": "h", "role": "viewer", "createdAt": "t"},
		{"userId": 3},
		"junk"
	]`
	users := DecodeViewers([]byte(raw))
	if len(users) != 1 || users[0].UserID != "viewer-1" {
		t.Errorf("expected only the well-formed viewer, got %+v", users)
	}

	if got := DecodeViewers([]byte(`{"userId": "x"}`)); got != nil {
		t.Errorf("expected nil for non-array, got %+v", got)
	}
	if got := DecodeViewers([]byte(`not json`)); got != nil {
		t.Errorf("expected nil for corrupt payload, got %+v", got)
	}
}
