// Package model defines domain entities used by services and repositories.
package model

import "time"

// Tokens collects an issued access token and its expiry (for diagnostics).
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// User represents an account. The password hash never leaves the server.
type User struct {
	ID           int64
	Username     string // unique, case-sensitive
	PasswordHash string // bcrypt digest
	CreatedAt    time.Time
}

// PublicUser is the listing shape of a user: no credential material.
type PublicUser struct {
	ID       int64
	Username string
}

// Compound is a named chemical-structure record owned by exactly one user.
// Structure holds the SMILES encoding and is opaque to everything here.
type Compound struct {
	ID        int64
	Name      string
	Structure string
	OwnerID   int64
	CreatedAt time.Time
}
