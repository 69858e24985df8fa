// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"

	"novastore/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	collections map[string][]byte
	viewers     []domain.StoredViewerUser
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		collections: make(map[string][]byte),
	}
}

// Ensure interfaces are met.
var _ domain.CollectionStore = (*DB)(nil)
var _ domain.ViewerRepository = (*ViewerRepo)(nil)

// --- CollectionStore ---

// Get returns a copy of the document stored under key.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	v, ok := db.collections[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value under key, replacing any previous document.
func (db *DB) Put(ctx context.Context, key string, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.collections[key] = append([]byte(nil), value...)
	return nil
}

// --- ViewerRepository ---

// ViewerRepo implements viewer account persistence.
type ViewerRepo struct {
	db *DB
}

// NewViewerRepo creates a new viewer repository.
func (db *DB) NewViewerRepo() *ViewerRepo {
	return &ViewerRepo{db: db}
}

// List returns all viewers in registration order.
func (r *ViewerRepo) List(ctx context.Context) ([]domain.StoredViewerUser, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := make([]domain.StoredViewerUser, len(r.db.viewers))
	copy(result, r.db.viewers)
	return result, nil
}

// FindByEmail retrieves a viewer by normalized email.
func (r *ViewerRepo) FindByEmail(ctx context.Context, email string) (*domain.StoredViewerUser, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.viewers {
		if u.Email == email {
			return &u, nil
		}
	}
	// Return nil if not found
	return nil, nil
}

// Append stores a new viewer. The email check and the insert happen under
// one lock, so concurrent signups for the same email see ErrDuplicateViewer.
func (r *ViewerRepo) Append(ctx context.Context, user domain.StoredViewerUser) error {
	if !user.Valid() {
		return domain.ErrInvalidViewer
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.viewers {
		if u.Email == user.Email {
			return domain.ErrDuplicateViewer
		}
	}
	r.db.viewers = append(r.db.viewers, user)
	return nil
}
