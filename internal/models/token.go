package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted record of an issued refresh token.
// Only the bcrypt hash of the raw token is stored, never the token itself.
// A user has at most one record: issuing a new token overwrites the old one.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by AuthService on signup, signin and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
