// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist
	// (for compound deletion it also covers "exists but not yours").
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation
	// (username taken, duplicate structure for the same owner).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials indicates a failed login; unknown username and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates a missing, invalid or expired token,
	// or a token subject that no longer resolves to a user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not the owner of the compound.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyShared indicates the (user, compound) share pair already exists.
	ErrAlreadyShared = errors.New("already shared")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
