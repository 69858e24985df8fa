package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"novastore/internal/domain"
)

var _ domain.CollectionStore = (*DB)(nil)

// Get returns the document stored under key.
func (d *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT payload FROM collections WHERE key = $1",
		key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Put upserts the document stored under key. Values that are not valid JSON
// are stored as a JSON string so that reads report them as corrupt instead
// of failing the write.
func (d *DB) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		quoted, err := json.Marshal(string(value))
		if err != nil {
			return err
		}
		value = quoted
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO collections (key, payload, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	return err
}
