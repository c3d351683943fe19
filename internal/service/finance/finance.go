package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

// Finance service: per-user CRUD over transactions, categories and savings.
// Every operation is scoped by the authenticated user's id, ownership
// violations surface as not-found.
type FinanceService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*FinanceService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &FinanceService{storage: storage}, nil
}

func validKind(kind string) bool {
	return kind == models.KindIncome || kind == models.KindExpense
}

func (s *FinanceService) CreateCategory(ctx context.Context, userID uuid.UUID, name string, kind string) (models.Category, error) {
	if !validKind(kind) {
		return models.Category{}, apperrors.ErrKindInvalid
	}

	return s.storage.Category().Create(ctx, repository.CreateCategoryParams{
		UserID: userID,
		Name:   name,
		Kind:   kind,
	})
}

func (s *FinanceService) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	return s.storage.Category().List(ctx, userID)
}

func (s *FinanceService) RenameCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (models.Category, error) {
	return s.storage.Category().Rename(ctx, userID, id, name)
}

// DeleteCategory removes the category, transactions keep living with their
// category reference nulled by the storage layer
func (s *FinanceService) DeleteCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return s.storage.Category().Delete(ctx, userID, id)
}

func (s *FinanceService) CreateTransaction(ctx context.Context, userID uuid.UUID, arg repository.CreateTransactionParams) (models.Transaction, error) {
	if !validKind(arg.Kind) {
		return models.Transaction{}, apperrors.ErrKindInvalid
	}
	if !arg.Amount.IsPositive() {
		return models.Transaction{}, apperrors.ErrAmountInvalid
	}

	arg.UserID = userID

	// Category must belong to the same user
	if arg.CategoryID != nil {
		if _, err := s.storage.Category().Get(ctx, userID, *arg.CategoryID); err != nil {
			return models.Transaction{}, err
		}
	}

	return s.storage.Transaction().Create(ctx, arg)
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error) {
	return s.storage.Transaction().List(ctx, userID, filter)
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateTransactionParams) (models.Transaction, error) {
	if !validKind(arg.Kind) {
		return models.Transaction{}, apperrors.ErrKindInvalid
	}
	if !arg.Amount.IsPositive() {
		return models.Transaction{}, apperrors.ErrAmountInvalid
	}

	if arg.CategoryID != nil {
		if _, err := s.storage.Category().Get(ctx, userID, *arg.CategoryID); err != nil {
			return models.Transaction{}, err
		}
	}

	return s.storage.Transaction().Update(ctx, userID, id, arg)
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return s.storage.Transaction().Delete(ctx, userID, id)
}

func (s *FinanceService) CreateGoal(ctx context.Context, userID uuid.UUID, arg repository.CreateSavingsGoalParams) (models.SavingsGoal, error) {
	if !arg.TargetAmount.IsPositive() {
		return models.SavingsGoal{}, apperrors.ErrAmountInvalid
	}

	arg.UserID = userID
	return s.storage.Goal().Create(ctx, arg)
}

func (s *FinanceService) ListGoals(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	return s.storage.Goal().List(ctx, userID)
}

func (s *FinanceService) UpdateGoal(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateSavingsGoalParams) (models.SavingsGoal, error) {
	if !arg.TargetAmount.IsPositive() {
		return models.SavingsGoal{}, apperrors.ErrAmountInvalid
	}

	return s.storage.Goal().Update(ctx, userID, id, arg)
}

// Deposit adds amount to the goal's saved total inside a transaction, so the
// existence check and the increment observe the same state
func (s *FinanceService) Deposit(ctx context.Context, userID uuid.UUID, goalID uuid.UUID, amount decimal.Decimal) (models.SavingsGoal, error) {
	if !amount.IsPositive() {
		return models.SavingsGoal{}, apperrors.ErrAmountInvalid
	}

	var goal models.SavingsGoal
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		if _, err := tx.Goal().Get(ctx, userID, goalID); err != nil {
			return err
		}

		var err error
		goal, err = tx.Goal().AddSaved(ctx, userID, goalID, amount)
		return err
	})
	if err != nil {
		return models.SavingsGoal{}, fmt.Errorf("deposit failed. Err: %w", err)
	}

	return goal, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return s.storage.Goal().Delete(ctx, userID, id)
}

func (s *FinanceService) CreateTool(ctx context.Context, userID uuid.UUID, arg repository.CreateSavingsToolParams) (models.SavingsTool, error) {
	arg.UserID = userID
	return s.storage.Tool().Create(ctx, arg)
}

func (s *FinanceService) ListTools(ctx context.Context, userID uuid.UUID) ([]models.SavingsTool, error) {
	return s.storage.Tool().List(ctx, userID)
}

func (s *FinanceService) DeleteTool(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return s.storage.Tool().Delete(ctx, userID, id)
}
