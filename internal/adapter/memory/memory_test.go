package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"novastore/internal/domain"
)

func TestCollectionStore(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Missing key
	_, ok, err := db.Get(ctx, domain.ProductsKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}

	value := []byte(`[{"id":1}]`)
	if err := db.Put(ctx, domain.ProductsKey, value); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Caller mutation must not leak into the store
	value[0] = 'X'

	got, ok, err := db.Get(ctx, domain.ProductsKey)
	if err != nil || !ok {
		t.Fatalf("Get: %v, %v", ok, err)
	}
	if string(got) != `[{"id":1}]` {
		t.Errorf("unexpected value %q", got)
	}

	got[0] = 'Y'
	again, _, _ := db.Get(ctx, domain.ProductsKey)
	if string(again) != `[{"id":1}]` {
		t.Error("returned slice aliases stored document")
	}

	// Overwrite
	if err := db.Put(ctx, domain.ProductsKey, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	got, _, _ = db.Get(ctx, domain.ProductsKey)
	if string(got) != `[]` {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestViewerRepository(t *testing.T) {
	db := New()
	repo := db.NewViewerRepo()
	ctx := context.Background()

	u := domain.StoredViewerUser{UserID: "viewer-1", Email: "v@x.com", PasswordHash: "h", Role: domain.RoleViewer, CreatedAt: "t"}
	if err := repo.Append(ctx, u); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append(ctx, domain.StoredViewerUser{UserID: "x", Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrInvalidViewer) {
		t.Fatalf("expected ErrInvalidViewer, got %v", err)
	}
	dup := u
	dup.UserID = "viewer-2"
	if err := repo.Append(ctx, dup); !errors.Is(err, domain.ErrDuplicateViewer) {
		t.Fatalf("expected ErrDuplicateViewer, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 viewer, got %d", len(users))
	}

	found, err := repo.FindByEmail(ctx, "v@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil || found.UserID != "viewer-1" {
		t.Errorf("expected viewer-1, got %+v", found)
	}

	missing, err := repo.FindByEmail(ctx, "nobody@x.com")
	if err != nil || missing != nil {
		t.Errorf("expected nil, got %+v, %v", missing, err)
	}
}

func TestViewerRepository_ConcurrentSignup(t *testing.T) {
	repo := New().NewViewerRepo()
	ctx := context.Background()

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Append(ctx, domain.StoredViewerUser{
				UserID:       fmt.Sprintf("viewer-%d", i),
				Email:        "same@x.com",
				PasswordHash: "h",
				Role:         domain.RoleViewer,
				CreatedAt:    "t",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				oks++
			case errors.Is(err, domain.ErrDuplicateViewer):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if oks != 1 || dups != workers-1 {
		t.Fatalf("expected 1 insert and %d duplicates, got %d and %d", workers-1, oks, dups)
	}
	users, err := repo.List(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("expected 1 stored viewer, got %v, %v", users, err)
	}
}
