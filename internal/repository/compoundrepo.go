package repository

import (
	"context"

	"github.com/resync-lab/resync-server/internal/model"
)

// CompoundRepository provides access to compounds and their share relation.
type CompoundRepository interface {
	// Create inserts a new compound and fills in the generated ID.
	Create(ctx context.Context, c *model.Compound) error

	// GetByID returns a compound regardless of who may access it.
	GetByID(ctx context.Context, id int64) (*model.Compound, error)

	// ListAccessible returns the union of compounds owned by userID and
	// compounds shared with userID, without duplicates.
	ListAccessible(ctx context.Context, userID int64) ([]model.Compound, error)

	// Delete removes the compound and all its share rows in one transaction.
	// It fails with ErrNotFound when the compound does not exist or ownerID
	// is not its owner; nothing is committed in that case.
	Delete(ctx context.Context, ownerID, compoundID int64) error

	// Share inserts one (userID, compoundID) share row.
	Share(ctx context.Context, compoundID, targetUserID int64) error
}
