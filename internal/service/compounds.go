package service

import (
	"context"
	"errors"

	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/model"
	"github.com/resync-lab/resync-server/internal/repository"
)

// CompoundService defines operations over compounds and their share relation.
type CompoundService interface {
	// ListAccessible returns owned plus shared compounds, de-duplicated by id.
	ListAccessible(ctx context.Context, userID int64) ([]model.Compound, error)
	// Create stores a new compound owned by userID.
	Create(ctx context.Context, userID int64, name, structure string) (*model.Compound, error)
	// Delete removes a compound and its share rows; owner only.
	Delete(ctx context.Context, userID, compoundID int64) error
	// Share grants read access on a compound to another user; owner only.
	Share(ctx context.Context, userID, compoundID, targetUserID int64) error
}

type CompoundServiceImpl struct {
	compounds repository.CompoundRepository
	users     repository.UserRepository
}

// NewCompoundService constructs CompoundService with required dependencies.
func NewCompoundService(compounds repository.CompoundRepository, users repository.UserRepository) *CompoundServiceImpl {
	return &CompoundServiceImpl{compounds: compounds, users: users}
}

// ListAccessible returns the union of owned and shared compounds. The store
// already de-duplicates; the pass by id here keeps the invariant even if the
// backing query changes.
func (s *CompoundServiceImpl) ListAccessible(ctx context.Context, userID int64) ([]model.Compound, error) {
	all, err := s.compounds.ListAccessible(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(all))
	out := all[:0]
	for _, c := range all {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Create inserts a compound; an identical structure string already owned by
// the same user fails with ErrAlreadyExists. Other users may own the same
// structure.
func (s *CompoundServiceImpl) Create(ctx context.Context, userID int64, name, structure string) (*model.Compound, error) {
	if name == "" || structure == "" {
		return nil, errors.New("empty name/structure")
	}
	c := &model.Compound{Name: name, Structure: structure, OwnerID: userID}
	if err := s.compounds.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the compound and cascades over its share rows atomically.
// Missing compound and foreign ownership surface as one merged ErrNotFound,
// so callers cannot probe for other users' compounds.
func (s *CompoundServiceImpl) Delete(ctx context.Context, userID, compoundID int64) error {
	return s.compounds.Delete(ctx, userID, compoundID)
}

// Share grants read access to targetUserID. Unlike Delete, the failure modes
// are differentiated: ErrForbidden when the caller does not own the compound
// (or it does not exist), ErrNotFound when the target user does not resolve,
// ErrAlreadyShared when the pair already exists. The owner never enters their
// own share set, so a self-share reports ErrAlreadyShared.
func (s *CompoundServiceImpl) Share(ctx context.Context, userID, compoundID, targetUserID int64) error {
	c, err := s.compounds.GetByID(ctx, compoundID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrForbidden
		}
		return err
	}
	if c.OwnerID != userID {
		return errs.ErrForbidden
	}
	if targetUserID == userID {
		return errs.ErrAlreadyShared
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		return err // ErrNotFound for a vanished target
	}
	return s.compounds.Share(ctx, compoundID, targetUserID)
}
