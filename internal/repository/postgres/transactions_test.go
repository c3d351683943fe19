package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
	"github.com/avoronov/budgetly/internal/testutil"
)

func Test_TransactionRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	mustCreateTransaction := func(t *testing.T, tx pgx.Tx, arg repository.CreateTransactionParams) models.Transaction {
		t.Helper()
		repo := TransactionRepo{DB: tx}
		tr, err := repo.Create(t.Context(), arg)
		require.NoError(t, err)
		return tr
	}

	t.Run("create ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")
			occurredAt := mustParseTime("2024-03-01 12:00:00Z")

			got, err := repo.Create(t.Context(), repository.CreateTransactionParams{
				UserID:     user.ID,
				Amount:     decimal.RequireFromString("199.99"),
				Kind:       models.KindExpense,
				Note:       "headphones",
				OccurredAt: occurredAt,
			})

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, got.ID)
			require.Equal(t, user.ID, got.UserID)
			require.Nil(t, got.CategoryID, "transaction without category is allowed")
			require.True(t, got.Amount.Equal(decimal.RequireFromString("199.99")), "amount should round trip exactly")
			require.Equal(t, models.KindExpense, got.Kind)
			require.Equal(t, "headphones", got.Note)
			require.WithinDuration(t, occurredAt, got.OccurredAt, time.Microsecond)
		})
	})

	t.Run("list newest first", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")

			older := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, Amount: decimal.NewFromInt(10), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})
			newer := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, Amount: decimal.NewFromInt(20), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-02 12:00:00Z"),
			})

			got, err := repo.List(t.Context(), user.ID, repository.TransactionFilter{})

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, newer.ID, got[0].ID)
			assert.Equal(t, older.ID, got[1].ID)
		})
	})

	t.Run("list filtered by category", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			catRepo := CategoryRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")

			category, err := catRepo.Create(t.Context(), repository.CreateCategoryParams{
				UserID: user.ID, Name: "Groceries", Kind: models.KindExpense,
			})
			require.NoError(t, err)

			inCategory := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, CategoryID: &category.ID,
				Amount: decimal.NewFromInt(10), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})
			mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, Amount: decimal.NewFromInt(20), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-02 12:00:00Z"),
			})

			got, err := repo.List(t.Context(), user.ID, repository.TransactionFilter{CategoryID: &category.ID})

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, inCategory.ID, got[0].ID)
		})
	})

	t.Run("update ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")
			tr := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, Amount: decimal.NewFromInt(10), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})

			got, err := repo.Update(t.Context(), user.ID, tr.ID, repository.UpdateTransactionParams{
				Amount:     decimal.RequireFromString("15.50"),
				Kind:       models.KindIncome,
				Note:       "corrected",
				OccurredAt: mustParseTime("2024-03-03 12:00:00Z"),
			})

			require.NoError(t, err)
			require.True(t, got.Amount.Equal(decimal.RequireFromString("15.50")))
			require.Equal(t, models.KindIncome, got.Kind)
			require.Equal(t, "corrected", got.Note)
		})
	})

	t.Run("update or delete other user transaction fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")
			other := mustCreateUser(t, tx, "c@d.com")
			tr := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, Amount: decimal.NewFromInt(10), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})

			_, err := repo.Update(t.Context(), other.ID, tr.ID, repository.UpdateTransactionParams{
				Amount: decimal.NewFromInt(1), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})
			require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

			err = repo.Delete(t.Context(), other.ID, tr.ID)
			require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		})
	})

	t.Run("category delete keeps transaction", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := TransactionRepo{DB: tx}
			catRepo := CategoryRepo{DB: tx}
			user := mustCreateUser(t, tx, "a@b.com")

			category, err := catRepo.Create(t.Context(), repository.CreateCategoryParams{
				UserID: user.ID, Name: "Groceries", Kind: models.KindExpense,
			})
			require.NoError(t, err)

			tr := mustCreateTransaction(t, tx, repository.CreateTransactionParams{
				UserID: user.ID, CategoryID: &category.ID,
				Amount: decimal.NewFromInt(10), Kind: models.KindExpense,
				OccurredAt: mustParseTime("2024-03-01 12:00:00Z"),
			})

			err = catRepo.Delete(t.Context(), user.ID, category.ID)
			require.NoError(t, err)

			got, err := repo.List(t.Context(), user.ID, repository.TransactionFilter{})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tr.ID, got[0].ID)
			assert.Nil(t, got[0].CategoryID, "category reference should be cleared, not cascade")
		})
	})
}
