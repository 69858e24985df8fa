package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"novastore/internal/domain"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// ViewerRepo implements viewer account persistence on DB.
type ViewerRepo struct {
	db *DB
}

var _ domain.ViewerRepository = (*ViewerRepo)(nil)

// NewViewerRepo wraps a DB as a ViewerRepository.
func NewViewerRepo(db *DB) *ViewerRepo {
	return &ViewerRepo{db: db}
}

// List returns all viewers in registration order.
func (r *ViewerRepo) List(ctx context.Context) ([]domain.StoredViewerUser, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT user_id, email, password_hash, role, created_at FROM viewer_users ORDER BY created_at, user_id",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []domain.StoredViewerUser
	for rows.Next() {
		u, err := scanViewer(rows)
		if err != nil {
			return nil, err
		}
		if u.Valid() {
			users = append(users, u)
		}
	}
	return users, rows.Err()
}

// FindByEmail retrieves a viewer by normalized email.
func (r *ViewerRepo) FindByEmail(ctx context.Context, email string) (*domain.StoredViewerUser, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT user_id, email, password_hash, role, created_at FROM viewer_users WHERE email = $1",
		email,
	)
	u, err := scanViewer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.Valid() {
		return nil, nil
	}
	return &u, nil
}

// Append inserts a viewer. A duplicate email yields domain.ErrDuplicateViewer.
func (r *ViewerRepo) Append(ctx context.Context, user domain.StoredViewerUser) error {
	createdAt, err := time.Parse(time.RFC3339Nano, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("viewer created_at: %w", err)
	}
	_, err = r.db.sql.ExecContext(ctx,
		"INSERT INTO viewer_users (user_id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.UserID, user.Email, user.PasswordHash, string(user.Role), createdAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateViewer
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanViewer(s rowScanner) (domain.StoredViewerUser, error) {
	var (
		u         domain.StoredViewerUser
		role      string
		createdAt time.Time
	)
	if err := s.Scan(&u.UserID, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		return domain.StoredViewerUser{}, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return u, nil
}
