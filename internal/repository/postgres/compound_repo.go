package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/model"
)

// CompoundRepo implements CompoundRepository using PostgreSQL.
type CompoundRepo struct{ db *DB }

// NewCompoundRepo constructs a compound repository.
func NewCompoundRepo(db *DB) *CompoundRepo { return &CompoundRepo{db: db} }

// Create inserts a new compound row and fills in the generated ID.
// A duplicate (owner_id, structure) pair maps to ErrAlreadyExists.
func (r *CompoundRepo) Create(ctx context.Context, c *model.Compound) error {
	const q = `
INSERT INTO compounds (name, structure, owner_id)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, c.Name, c.Structure, c.OwnerID).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a compound by ID.
func (r *CompoundRepo) GetByID(ctx context.Context, id int64) (*model.Compound, error) {
	const q = `
SELECT id, name, structure, owner_id, created_at
FROM compounds WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var c model.Compound
	if err := row.Scan(&c.ID, &c.Name, &c.Structure, &c.OwnerID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListAccessible returns compounds owned by userID plus compounds shared with
// userID. UNION de-duplicates by row.
func (r *CompoundRepo) ListAccessible(ctx context.Context, userID int64) ([]model.Compound, error) {
	const q = `
SELECT id, name, structure, owner_id, created_at
FROM compounds WHERE owner_id=$1
UNION
SELECT c.id, c.name, c.structure, c.owner_id, c.created_at
FROM compounds c
JOIN shared_compounds sc ON sc.compound_id = c.id
WHERE sc.user_id=$1
ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Compound{}
	for rows.Next() {
		var c model.Compound
		if err := rows.Scan(&c.ID, &c.Name, &c.Structure, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a compound and its share rows in a single transaction.
// The ownership check locks the row, so a concurrent delete or share of the
// same compound serializes behind it. Missing compound and foreign owner both
// report ErrNotFound without touching anything.
func (r *CompoundRepo) Delete(ctx context.Context, ownerID, compoundID int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const sel = `SELECT owner_id FROM compounds WHERE id=$1 FOR UPDATE`
	const delShares = `DELETE FROM shared_compounds WHERE compound_id=$1`
	const delCompound = `DELETE FROM compounds WHERE id=$1`

	var gotOwner int64
	if err = tx.QueryRow(ctx, sel, compoundID).Scan(&gotOwner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if gotOwner != ownerID {
		return errs.ErrNotFound
	}
	if _, err = tx.Exec(ctx, delShares, compoundID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, delCompound, compoundID); err != nil {
		return err
	}
	return nil
}

// Share inserts one share row; a duplicate pair maps to ErrAlreadyShared.
func (r *CompoundRepo) Share(ctx context.Context, compoundID, targetUserID int64) error {
	const q = `
INSERT INTO shared_compounds (user_id, compound_id)
VALUES ($1, $2)`
	_, err := r.db.Pool.Exec(ctx, q, targetUserID, compoundID)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyShared
	}
	return err
}
