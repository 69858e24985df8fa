package app

import (
	"context"
	"encoding/json"
	"fmt"

	"novastore/internal/domain"
)

// CollectionViewers stores the viewer list as one JSON document in a
// CollectionStore. It backs viewer accounts for stores without a dedicated
// table.
type CollectionViewers struct {
	store domain.CollectionStore
}

// NewCollectionViewers creates a viewer repository over store.
func NewCollectionViewers(store domain.CollectionStore) *CollectionViewers {
	return &CollectionViewers{store: store}
}

var _ domain.ViewerRepository = (*CollectionViewers)(nil)

// List returns all well-formed viewer records.
func (c *CollectionViewers) List(ctx context.Context) ([]domain.StoredViewerUser, error) {
	raw, ok, err := c.store.Get(ctx, domain.ViewersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return DecodeViewers(raw), nil
}

// FindByEmail returns the viewer with the given normalized email, or nil.
func (c *CollectionViewers) FindByEmail(ctx context.Context, email string) (*domain.StoredViewerUser, error) {
	users, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return FindViewer(users, email), nil
}

// Append adds user to the stored list.
func (c *CollectionViewers) Append(ctx context.Context, user domain.StoredViewerUser) error {
	users, err := c.List(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(append(users, user))
	if err != nil {
		return fmt.Errorf("encode viewers: %w", err)
	}
	return c.store.Put(ctx, domain.ViewersKey, payload)
}

// DecodeViewers parses a stored viewer list. A payload that is not a JSON
// array yields no viewers; elements failing the shape check are dropped.
func DecodeViewers(raw []byte) []domain.StoredViewerUser {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]domain.StoredViewerUser, 0, len(items))
	for _, item := range items {
		var u domain.StoredViewerUser
		if err := json.Unmarshal(item, &u); err != nil {
			continue
		}
		if u.Valid() {
			out = append(out, u)
		}
	}
	return out
}

// FindViewer returns the first viewer in users with the given email.
func FindViewer(users []domain.StoredViewerUser, email string) *domain.StoredViewerUser {
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u
		}
	}
	return nil
}
