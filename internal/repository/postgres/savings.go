package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

type SavingsGoalRepo struct {
	DB DBTX
}

const createGoal = `-- name: CreateSavingsGoal
INSERT INTO savings_goals (user_id, name, target_amount, deadline)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at
`

func (r *SavingsGoalRepo) Create(ctx context.Context, arg repository.CreateSavingsGoalParams) (models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, createGoal, arg.UserID, arg.Name, arg.TargetAmount, arg.Deadline)
	goal, err := pgx.CollectOneRow(rows, rowToGoal)
	if err != nil {
		return goal, fmt.Errorf("db error: %w", err)
	}
	return goal, nil
}

const listGoals = `-- name: ListSavingsGoals
SELECT id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at
FROM savings_goals
WHERE user_id = $1
ORDER BY created_at
`

func (r *SavingsGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, listGoals, userID)
	goals, err := pgx.CollectRows(rows, rowToGoal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return goals, nil
}

const getGoal = `-- name: GetSavingsGoal
SELECT id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at
FROM savings_goals
WHERE user_id = $1 AND id = $2
`

func (r *SavingsGoalRepo) Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, getGoal, userID, id)
	goal, err := pgx.CollectOneRow(rows, rowToGoal)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return goal, fmt.Errorf("repo error: %w", apperrors.ErrSavingsGoalNotFound)
	}

	return goal, err
}

const updateGoal = `-- name: UpdateSavingsGoal
UPDATE savings_goals
SET name          = $3,
    target_amount = $4,
    deadline      = $5,
    updated_at    = now()
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at
`

func (r *SavingsGoalRepo) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateSavingsGoalParams) (models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, updateGoal, userID, id, arg.Name, arg.TargetAmount, arg.Deadline)
	goal, err := pgx.CollectOneRow(rows, rowToGoal)

	switch {
	case err == nil:
		return goal, nil
	case errors.Is(err, pgx.ErrNoRows):
		return goal, fmt.Errorf("repo error: %w", apperrors.ErrSavingsGoalNotFound)
	default:
		return goal, fmt.Errorf("db error: %w", err)
	}
}

const addSaved = `-- name: AddSavedAmount
UPDATE savings_goals
SET saved_amount = saved_amount + $3,
    updated_at   = now()
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at
`

func (r *SavingsGoalRepo) AddSaved(ctx context.Context, userID uuid.UUID, id uuid.UUID, amount decimal.Decimal) (models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, addSaved, userID, id, amount)
	goal, err := pgx.CollectOneRow(rows, rowToGoal)

	switch {
	case err == nil:
		return goal, nil
	case errors.Is(err, pgx.ErrNoRows):
		return goal, fmt.Errorf("repo error: %w", apperrors.ErrSavingsGoalNotFound)
	default:
		return goal, fmt.Errorf("db error: %w", err)
	}
}

const deleteGoal = `-- name: DeleteSavingsGoal
DELETE FROM savings_goals
WHERE user_id = $1 AND id = $2
`

func (r *SavingsGoalRepo) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteGoal, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrSavingsGoalNotFound)
	}
	return nil
}

func rowToGoal(row pgx.CollectableRow) (models.SavingsGoal, error) {
	var g models.SavingsGoal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.SavedAmount, &g.Deadline, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

type SavingsToolRepo struct {
	DB DBTX
}

const createTool = `-- name: CreateSavingsTool
INSERT INTO savings_tools (user_id, name, kind, annual_rate, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, name, kind, annual_rate, notes, created_at
`

func (r *SavingsToolRepo) Create(ctx context.Context, arg repository.CreateSavingsToolParams) (models.SavingsTool, error) {
	rows, _ := r.DB.Query(ctx, createTool, arg.UserID, arg.Name, arg.Kind, arg.AnnualRate, arg.Notes)
	tool, err := pgx.CollectOneRow(rows, rowToTool)
	if err != nil {
		return tool, fmt.Errorf("db error: %w", err)
	}
	return tool, nil
}

const listTools = `-- name: ListSavingsTools
SELECT id, user_id, name, kind, annual_rate, notes, created_at
FROM savings_tools
WHERE user_id = $1
ORDER BY created_at
`

func (r *SavingsToolRepo) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsTool, error) {
	rows, _ := r.DB.Query(ctx, listTools, userID)
	tools, err := pgx.CollectRows(rows, rowToTool)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tools, nil
}

const deleteTool = `-- name: DeleteSavingsTool
DELETE FROM savings_tools
WHERE user_id = $1 AND id = $2
`

func (r *SavingsToolRepo) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTool, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrSavingsToolNotFound)
	}
	return nil
}

func rowToTool(row pgx.CollectableRow) (models.SavingsTool, error) {
	var t models.SavingsTool
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Kind, &t.AnnualRate, &t.Notes, &t.CreatedAt)
	return t, err
}
