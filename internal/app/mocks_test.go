package app

import (
	"context"
	"errors"
	"sync"

	"novastore/internal/domain"
)

type mockViewerRepo struct {
	listFn        func(ctx context.Context) ([]domain.StoredViewerUser, error)
	findByEmailFn func(ctx context.Context, email string) (*domain.StoredViewerUser, error)
	appendFn      func(ctx context.Context, user domain.StoredViewerUser) error
}

func (m *mockViewerRepo) List(ctx context.Context) ([]domain.StoredViewerUser, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockViewerRepo) FindByEmail(ctx context.Context, email string) (*domain.StoredViewerUser, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockViewerRepo) Append(ctx context.Context, user domain.StoredViewerUser) error {
	if m.appendFn != nil {
		return m.appendFn(ctx, user)
	}
	return nil
}

// mapStore is an in-memory CollectionStore that counts writes.
type mapStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   map[string]int
	getErr error
	putErr error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}, puts: map[string]int{}}
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.puts[key]++
	return nil
}

func (m *mapStore) writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts[key]
}

type mockSeeds struct {
	productsFn   func(ctx context.Context) ([]byte, error)
	categoriesFn func(ctx context.Context) ([]byte, error)
}

func (m *mockSeeds) Products(ctx context.Context) ([]byte, error) {
	if m.productsFn != nil {
		return m.productsFn(ctx)
	}
	return nil, errors.New("no products seed")
}

func (m *mockSeeds) Categories(ctx context.Context) ([]byte, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, errors.New("no categories seed")
}

func staticSeeds(products, categories string) *mockSeeds {
	return &mockSeeds{
		productsFn:   func(context.Context) ([]byte, error) { return []byte(products), nil },
		categoriesFn: func(context.Context) ([]byte, error) { return []byte(categories), nil },
	}
}
