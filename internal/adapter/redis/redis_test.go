package redis

import (
	"context"
	"errors"
	"testing"

	"novastore/internal/domain"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	s, err := Open(srv.Addr(), "", "test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, srv
}

func TestStoreGetPut(t *testing.T) {
	s, srv := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, domain.ProductsKey); err != nil || ok {
		t.Fatalf("expected missing key, got %v, %v", ok, err)
	}
	if err := s.Put(ctx, domain.ProductsKey, []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.Get(ctx, domain.ProductsKey)
	if err != nil || !ok {
		t.Fatalf("get: %v, %v", ok, err)
	}
	if string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected value %q", got)
	}
	if v, err := srv.Get("test:collection:products"); err != nil || v != `[{"id":1}]` {
		t.Fatalf("unexpected raw key %q, %v", v, err)
	}
}

func TestStoreFailsWhenServerDown(t *testing.T) {
	s, srv := newTestStore(t)
	srv.Close()
	if _, _, err := s.Get(context.Background(), domain.ProductsKey); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestOpenRequiresAddr(t *testing.T) {
	if s, err := Open(" ", "", ""); err == nil || s != nil {
		t.Fatal("expected error for empty addr")
	}
}

func TestViewerRepo(t *testing.T) {
	s, srv := newTestStore(t)
	repo := s.NewViewerRepo()
	ctx := context.Background()

	second := domain.StoredViewerUser{UserID: "viewer-2", Email: "b@x.com", PasswordHash: "h", Role: domain.RoleViewer, CreatedAt: "2026-01-02T00:00:00Z"}
	first := domain.StoredViewerUser{UserID: "viewer-1", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleViewer, CreatedAt: "2026-01-01T00:00:00Z"}
	for _, u := range []domain.StoredViewerUser{second, first} {
		if err := repo.Append(ctx, u); err != nil {
			t.Fatalf("append %s: %v", u.Email, err)
		}
	}

	dup := first
	dup.UserID = "viewer-3"
	if err := repo.Append(ctx, dup); !errors.Is(err, domain.ErrDuplicateViewer) {
		t.Fatalf("expected ErrDuplicateViewer, got %v", err)
	}

	if err := repo.Append(ctx, domain.StoredViewerUser{Email: "c@x.com"}); !errors.Is(err, domain.ErrInvalidViewer) {
		t.Fatalf("expected ErrInvalidViewer, got %v", err)
	}

	srv.HSet("test:viewers", "junk@x.com", "not json")

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].UserID != "viewer-1" || users[1].UserID != "viewer-2" {
		t.Fatalf("unexpected list %+v", users)
	}

	found, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil || found == nil || found.UserID != "viewer-1" {
		t.Fatalf("unexpected find result %+v, %v", found, err)
	}
	junk, err := repo.FindByEmail(ctx, "junk@x.com")
	if err != nil || junk != nil {
		t.Fatalf("expected malformed entry to read as absent, got %+v, %v", junk, err)
	}
	missing, err := repo.FindByEmail(ctx, "nobody@x.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, got %+v, %v", missing, err)
	}
}
