package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

// RefreshTokenStore keeps a bcrypt hash of the current refresh token per user.
// A refresh token is valid only while its hash is stored, which is what makes
// the JWT-shaped refresh tokens revocable.
type RefreshTokenStore struct {
	hasher Hasher
	repo   repository.RefreshTokenRepo
	ttl    time.Duration
	now    func() time.Time
}

func NewRefreshTokenStore(hasher Hasher, repo repository.RefreshTokenRepo, ttl time.Duration, now func() time.Time) *RefreshTokenStore {
	if now == nil {
		now = time.Now
	}
	return &RefreshTokenStore{
		hasher: hasher,
		repo:   repo,
		ttl:    ttl,
		now:    now,
	}
}

// Store hashes the raw token and upserts the user's record.
// The upsert silently invalidates whatever token the user held before.
func (s *RefreshTokenStore) Store(ctx context.Context, userID uuid.UUID, rawToken string) error {
	hash, err := s.hasher.Hash(rawToken)
	if err != nil {
		return fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	now := s.now()
	_, err = s.repo.Upsert(ctx, models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return nil
}

// Validate checks that a non-expired record exists for the user and that its
// hash matches the raw token. Never-issued and expired collapse to the same
// not-found result.
func (s *RefreshTokenStore) Validate(ctx context.Context, userID uuid.UUID, rawToken string) error {
	record, err := s.repo.GetActive(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("error while fetching refresh token. Err: %w", err)
	}

	if err := s.hasher.Compare(record.TokenHash, rawToken); err != nil {
		return fmt.Errorf("refresh token mismatch. Err: %w", apperrors.ErrRefreshTokenNotFound)
	}

	return nil
}

// Revoke deletes the user's record if its hash matches the raw token.
// Bcrypt hashes are salted so the hash cannot be recomputed for the delete
// filter: the stored record is fetched, compared, and deleted by its stored
// hash. A missing or non-matching record is not an error, revoking an already
// rotated or unknown token is a no-op.
func (s *RefreshTokenStore) Revoke(ctx context.Context, userID uuid.UUID, rawToken string) error {
	record, err := s.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("error while fetching refresh token. Err: %w", err)
	}

	if err := s.hasher.Compare(record.TokenHash, rawToken); err != nil {
		return nil
	}

	if err := s.repo.Delete(ctx, userID, record.TokenHash); err != nil {
		return fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}

	return nil
}
