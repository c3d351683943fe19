package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

type CategoryRepo struct {
	DB DBTX
}

const createCategory = `-- name: CreateCategory
INSERT INTO categories (user_id, name, kind)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, kind, created_at
`

func (r *CategoryRepo) Create(ctx context.Context, arg repository.CreateCategoryParams) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, createCategory, arg.UserID, arg.Name, arg.Kind)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNameTaken)
		}
		return category, fmt.Errorf("db error: %w", err)
	}

	return category, nil
}

const listCategories = `-- name: ListCategories
SELECT id, user_id, name, kind, created_at
FROM categories
WHERE user_id = $1
ORDER BY name
`

func (r *CategoryRepo) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	rows, _ := r.DB.Query(ctx, listCategories, userID)
	categories, err := pgx.CollectRows(rows, rowToCategory)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return categories, nil
}

const getCategory = `-- name: GetCategory
SELECT id, user_id, name, kind, created_at
FROM categories
WHERE user_id = $1 AND id = $2
`

func (r *CategoryRepo) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, getCategory, userID, id)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	}

	return category, err
}

const renameCategory = `-- name: RenameCategory
UPDATE categories
SET name = $3
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, name, kind, created_at
`

func (r *CategoryRepo) Rename(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (models.Category, error) {
	rows, _ := r.DB.Query(ctx, renameCategory, userID, id, name)
	category, err := pgx.CollectOneRow(rows, rowToCategory)

	switch {
	case err == nil:
		return category, nil
	case errors.Is(err, pgx.ErrNoRows):
		return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return category, fmt.Errorf("repo error: %w", apperrors.ErrCategoryNameTaken)
		}
		return category, fmt.Errorf("db error: %w", err)
	}
}

const deleteCategory = `-- name: DeleteCategory
DELETE FROM categories
WHERE user_id = $1 AND id = $2
`

func (r *CategoryRepo) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteCategory, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrCategoryNotFound)
	}
	return nil
}

func rowToCategory(row pgx.CollectableRow) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.CreatedAt)
	return c, err
}
