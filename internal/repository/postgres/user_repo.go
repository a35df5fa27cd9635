package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row and fills in the generated ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (username, password_hash)
VALUES ($1, $2)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername selects a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users WHERE username=$1`
	row := r.db.Pool.QueryRow(ctx, q, username)
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListOthers selects all users except excludeID, id and username only.
func (r *UserRepo) ListOthers(ctx context.Context, excludeID int64) ([]model.PublicUser, error) {
	const q = `
SELECT id, username
FROM users WHERE id <> $1
ORDER BY username`
	rows, err := r.db.Pool.Query(ctx, q, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PublicUser{}
	for rows.Next() {
		var u model.PublicUser
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
