package crypto

import (
	"strings"
	"testing"
)

func TestHashPassword_SaltedAndOpaque(t *testing.T) {
	t.Parallel()

	const pw = "p@ssw0rd"
	h1, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if h1 == "" || h2 == "" {
		t.Fatalf("empty hash")
	}
	if h1 == h2 {
		t.Fatalf("two hashes of same password are equal — salt missing")
	}
	if strings.Contains(h1, pw) {
		t.Fatalf("hash contains plaintext")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	const pw = "correct horse battery staple"
	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !VerifyPassword(pw, hash) {
		t.Fatalf("VerifyPassword: expected true for correct password")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("VerifyPassword: expected false for wrong password")
	}
	if VerifyPassword("", hash) {
		t.Fatalf("VerifyPassword: expected false for empty password")
	}
	if VerifyPassword(pw, "not-a-bcrypt-digest") {
		t.Fatalf("VerifyPassword: expected false for malformed digest")
	}
}
