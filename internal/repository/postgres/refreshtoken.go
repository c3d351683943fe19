package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const upsertToken = `-- name: UpsertRefreshToken
INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET token_hash = EXCLUDED.token_hash,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at
RETURNING id, user_id, token_hash, created_at, expires_at
`

// Upsert inserts the record or overwrites the user's existing one.
// Overwriting is the rotation mechanism: the previous token stops validating
// the moment a new one is saved.
func (r *RefreshTokenRepo) Upsert(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, upsertToken, token.ID, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getActiveToken = `-- name: GetActiveRefreshToken
SELECT id, user_id, token_hash, created_at, expires_at
FROM refresh_tokens
WHERE user_id = $1 AND expires_at >= $2
`

// GetActive returns the user's record if it has not expired yet.
// Expiry is lazy: stale rows stay in the table but are never returned.
func (r *RefreshTokenRepo) GetActive(ctx context.Context, userID uuid.UUID, now time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getActiveToken, userID, now)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const getToken = `-- name: GetRefreshToken
SELECT id, user_id, token_hash, created_at, expires_at
FROM refresh_tokens
WHERE user_id = $1
`

// Get returns the user's record even if it expired already
func (r *RefreshTokenRepo) Get(ctx context.Context, userID uuid.UUID) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, userID)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const deleteToken = `-- name: DeleteRefreshToken
DELETE FROM refresh_tokens
WHERE user_id = $1 AND token_hash = $2
`

// Delete removes the record matching (user id, token hash).
// Deleting a missing record is not an error, logout stays idempotent.
func (r *RefreshTokenRepo) Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	_, err := r.DB.Exec(ctx, deleteToken, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
