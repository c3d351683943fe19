package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avoronov/budgetly/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with this email exists already has to return apperrors.ErrEmailTaken
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// RefreshToken repository interface
// A user owns at most one record: Upsert overwrites on user_id conflict
type RefreshTokenRepo interface {
	// Insert token record or overwrite the existing one for the same user
	Upsert(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the user's record with expires_at >= now
	// Expired or missing records both return apperrors.ErrRefreshTokenNotFound
	GetActive(ctx context.Context, userID uuid.UUID, now time.Time) (models.RefreshToken, error)

	// Return the user's record regardless of expiry
	// If no record exists must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, userID uuid.UUID) (models.RefreshToken, error)

	// Delete the record matching (user id, token hash) pair
	// Matching zero rows is not an error
	Delete(ctx context.Context, userID uuid.UUID, tokenHash string) error
}

type CreateCategoryParams struct {
	UserID uuid.UUID
	Name   string
	Kind   string
}

type CategoryRepo interface {
	// Create category
	// Duplicate (user, name) has to return apperrors.ErrCategoryNameTaken
	Create(ctx context.Context, arg CreateCategoryParams) (models.Category, error)

	List(ctx context.Context, userID uuid.UUID) ([]models.Category, error)

	// Get, Rename and Delete return apperrors.ErrCategoryNotFound if the
	// category does not exist or belongs to another user
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.Category, error)
	Rename(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (models.Category, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type CreateTransactionParams struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Amount     decimal.Decimal
	Kind       string
	Note       string
	OccurredAt time.Time
}

type UpdateTransactionParams struct {
	CategoryID *uuid.UUID
	Amount     decimal.Decimal
	Kind       string
	Note       string
	OccurredAt time.Time
}

type TransactionFilter struct {
	CategoryID *uuid.UUID
}

type TransactionRepo interface {
	Create(ctx context.Context, arg CreateTransactionParams) (models.Transaction, error)

	// List user transactions newest first
	List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error)

	// Update and Delete return apperrors.ErrTransactionNotFound if the
	// transaction does not exist or belongs to another user
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg UpdateTransactionParams) (models.Transaction, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type CreateSavingsGoalParams struct {
	UserID       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	Deadline     *time.Time
}

type UpdateSavingsGoalParams struct {
	Name         string
	TargetAmount decimal.Decimal
	Deadline     *time.Time
}

type SavingsGoalRepo interface {
	Create(ctx context.Context, arg CreateSavingsGoalParams) (models.SavingsGoal, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error)

	// Not found or owned by another user returns apperrors.ErrSavingsGoalNotFound
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (models.SavingsGoal, error)
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg UpdateSavingsGoalParams) (models.SavingsGoal, error)
	AddSaved(ctx context.Context, userID uuid.UUID, id uuid.UUID, amount decimal.Decimal) (models.SavingsGoal, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

type CreateSavingsToolParams struct {
	UserID     uuid.UUID
	Name       string
	Kind       string
	AnnualRate *decimal.Decimal
	Notes      string
}

type SavingsToolRepo interface {
	Create(ctx context.Context, arg CreateSavingsToolParams) (models.SavingsTool, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.SavingsTool, error)

	// Not found or owned by another user returns apperrors.ErrSavingsToolNotFound
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// Storage aggregates all repositories over a single connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Category() CategoryRepo
	Transaction() TransactionRepo
	Goal() SavingsGoalRepo
	Tool() SavingsToolRepo

	// Run fn in a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
