package auth

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt work factors. Passwords get the expensive cost: hashing runs only on
// signup and signin. Refresh tokens run through the hasher on every refresh
// and logout and already carry high entropy, so a cheaper cost is enough.
const (
	PasswordHashCost = 12
	TokenHashCost    = 8
)

var ErrEmptySecret = errors.New("secret must not be empty")

// Interface to create or compare one-way hashes
type Hasher interface {
	// Generate hash from secret
	Hash(secret string) (string, error)

	// Compare known hash and user provided secret
	// Must be protected against timing attacks
	Compare(hashed string, secret string) error
}

// Bcrypt hasher with configurable work factor.
// The secret is sha256-summed first, so inputs longer than bcrypt's 72-byte
// limit (JWT refresh tokens are) still hash correctly.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	sum := sha256.Sum256([]byte(secret))
	hash, err := bcrypt.GenerateFromPassword(sum[:], cost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashed string, secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}

	sum := sha256.Sum256([]byte(secret))
	return bcrypt.CompareHashAndPassword([]byte(hashed), sum[:])
}
