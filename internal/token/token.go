// Package token issues and verifies signed bearer tokens.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/resync-lab/resync-server/internal/errs"
)

// Issuer creates and verifies HS256 JWTs bound to a process-wide secret.
// The secret is injected once at construction and never mutated.
type Issuer struct {
	key []byte
	ttl time.Duration
}

// NewIssuer constructs an Issuer with the signing key and default token TTL.
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	return &Issuer{key: key, ttl: ttl}
}

// Issue creates a signed token asserting subject until now+ttl.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature integrity, then expiry, and returns the subject.
// Any failure is reported as ErrUnauthorized; a token whose signature does
// not verify is never inspected further.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errs.ErrUnauthorized
	}
	return claims.Subject, nil
}
