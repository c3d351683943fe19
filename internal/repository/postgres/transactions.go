package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (user_id, category_id, amount, kind, note, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, category_id, amount, kind, note, occurred_at, created_at, updated_at
`

func (r *TransactionRepo) Create(ctx context.Context, arg repository.CreateTransactionParams) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, createTransaction, arg.UserID, arg.CategoryID, arg.Amount, arg.Kind, arg.Note, arg.OccurredAt)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return tr, fmt.Errorf("db error: %w", err)
	}
	return tr, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, user_id, category_id, amount, kind, note, occurred_at, created_at, updated_at
FROM transactions
WHERE user_id = $1 AND ($2::uuid IS NULL OR category_id = $2)
ORDER BY occurred_at DESC, created_at DESC
`

func (r *TransactionRepo) List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactions, userID, filter.CategoryID)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return transactions, nil
}

const updateTransaction = `-- name: UpdateTransaction
UPDATE transactions
SET category_id = $3,
    amount      = $4,
    kind        = $5,
    note        = $6,
    occurred_at = $7,
    updated_at  = now()
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, category_id, amount, kind, note, occurred_at, created_at, updated_at
`

func (r *TransactionRepo) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateTransactionParams) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, updateTransaction, userID, id, arg.CategoryID, arg.Amount, arg.Kind, arg.Note, arg.OccurredAt)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return tr, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tr, fmt.Errorf("repo error: %w", apperrors.ErrTransactionNotFound)
	default:
		return tr, fmt.Errorf("db error: %w", err)
	}
}

const deleteTransaction = `-- name: DeleteTransaction
DELETE FROM transactions
WHERE user_id = $1 AND id = $2
`

func (r *TransactionRepo) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTransaction, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrTransactionNotFound)
	}
	return nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Amount, &t.Kind, &t.Note, &t.OccurredAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
