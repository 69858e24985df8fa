// Package redis implements the domain repositories on a Redis server.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"novastore/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "novastore"

// Store keeps each collection document under its own string key.
type Store struct {
	client *goredis.Client
	prefix string
}

var _ domain.CollectionStore = (*Store)(nil)

// Open connects to addr and pings the server.
func Open(addr, password, prefix string) (*Store, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client, prefix: prefix}, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) collectionKey(key string) string {
	return s.prefix + ":collection:" + key
}

// Get returns the document stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.collectionKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Put replaces the document stored under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.collectionKey(key), value, 0).Err()
}

// ViewerRepo stores viewers in a hash keyed by email. HSETNX makes
// registration atomic across instances.
type ViewerRepo struct {
	store *Store
}

var _ domain.ViewerRepository = (*ViewerRepo)(nil)

// NewViewerRepo creates a viewer repository sharing s's connection.
func (s *Store) NewViewerRepo() *ViewerRepo {
	return &ViewerRepo{store: s}
}

func (r *ViewerRepo) key() string {
	return r.store.prefix + ":viewers"
}

// List returns all viewers ordered by creation time. Malformed entries are
// skipped.
func (r *ViewerRepo) List(ctx context.Context) ([]domain.StoredViewerUser, error) {
	values, err := r.store.client.HVals(ctx, r.key()).Result()
	if err != nil {
		return nil, err
	}
	users := make([]domain.StoredViewerUser, 0, len(values))
	for _, v := range values {
		if u, ok := decodeViewer(v); ok {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b domain.StoredViewerUser) int {
		if c := strings.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return users, nil
}

// FindByEmail retrieves a viewer by normalized email.
func (r *ViewerRepo) FindByEmail(ctx context.Context, email string) (*domain.StoredViewerUser, error) {
	v, err := r.store.client.HGet(ctx, r.key(), email).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u, ok := decodeViewer(v)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Append stores user unless the email is taken, in which case it returns
// domain.ErrDuplicateViewer.
func (r *ViewerRepo) Append(ctx context.Context, user domain.StoredViewerUser) error {
	if !user.Valid() {
		return domain.ErrInvalidViewer
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode viewer: %w", err)
	}
	added, err := r.store.client.HSetNX(ctx, r.key(), user.Email, payload).Result()
	if err != nil {
		return err
	}
	if !added {
		return domain.ErrDuplicateViewer
	}
	return nil
}

func decodeViewer(v string) (domain.StoredViewerUser, bool) {
	var u domain.StoredViewerUser
	if err := json.Unmarshal([]byte(v), &u); err != nil || !u.Valid() {
		return domain.StoredViewerUser{}, false
	}
	return u, true
}
