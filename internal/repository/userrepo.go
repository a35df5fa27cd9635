// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/resync-lab/resync-server/internal/model"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user and fills in the generated ID.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by exact (case-sensitive) username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListOthers returns all users except the given one, without credential material.
	ListOthers(ctx context.Context, excludeID int64) ([]model.PublicUser, error)
}
