// Package service contains application services for authentication and compounds.
package service

import (
	"context"
	"errors"

	pkgcrypto "github.com/resync-lab/resync-server/internal/crypto"
	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/limiter"
	"github.com/resync-lab/resync-server/internal/model"
	"github.com/resync-lab/resync-server/internal/repository"
	"github.com/resync-lab/resync-server/internal/token"
)

// phantomHash is a throwaway bcrypt digest verified against when the username
// does not resolve, so unknown-user and wrong-password logins cost the same.
const phantomHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService defines authentication and account operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password string) (*model.User, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error)
	// Authenticate resolves a bearer token to a current user record.
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	// ListOtherUsers returns every user except the given one, no credential material.
	ListOtherUsers(ctx context.Context, userID int64) ([]model.PublicUser, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Issuer
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Issuer, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register stores a new user with a bcrypt digest, never the plaintext.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("empty username/password")
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip). Unknown
// username and wrong password fail with the same ErrInvalidCredentials.
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// burn the same hashing cost as the wrong-password path
		pkgcrypto.VerifyPassword(password, phantomHash)
		return model.Tokens{}, s.loginFailed(ctx, username, ipHash)
	}
	if !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		return model.Tokens{}, s.loginFailed(ctx, username, ipHash)
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, username, ipHash)

	access, exp, err := s.tokens.Issue(u.Username)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// loginFailed records the failure and picks the outgoing sentinel.
func (s *AuthServiceImpl) loginFailed(ctx context.Context, username string, ipHash []byte) error {
	if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
		return errs.ErrRateLimited
	}
	return errs.ErrInvalidCredentials
}

// Authenticate verifies the token and resolves its subject to a user record.
// A valid token whose subject no longer exists still fails.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	sub, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, sub)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}

// ListOtherUsers returns all users except userID.
func (s *AuthServiceImpl) ListOtherUsers(ctx context.Context, userID int64) ([]model.PublicUser, error) {
	return s.users.ListOthers(ctx, userID)
}
