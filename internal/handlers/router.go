package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avoronov/budgetly/internal/handlers/middleware"
	"github.com/avoronov/budgetly/internal/logger"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
	"github.com/avoronov/budgetly/internal/service/auth"
)

type authService interface {
	// Create identity and issue first token pair
	// Has to return apperrors.ErrEmailTaken if the email is registered already
	SignUp(ctx context.Context, params auth.SignUpParams) (auth.Result, error)

	// Verify credentials and issue a fresh pair
	// Unknown email and wrong password both return apperrors.ErrInvalidCredentials
	SignIn(ctx context.Context, email string, password string) (auth.Result, error)

	// Rotate the pair using a valid refresh token
	// Any failure returns apperrors.ErrInvalidRefreshToken
	Refresh(ctx context.Context, rawRefresh string) (models.TokenPair, error)

	// Revoke the refresh token
	// Undecodable token returns apperrors.ErrLogoutFailed
	Logout(ctx context.Context, rawRefresh string) error

	// Resolve access token to user, apperrors.ErrUnauthenticated on failure
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

type financeService interface {
	CreateCategory(ctx context.Context, userID uuid.UUID, name string, kind string) (models.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	RenameCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	CreateTransaction(ctx context.Context, userID uuid.UUID, arg repository.CreateTransactionParams) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateTransactionParams) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	CreateGoal(ctx context.Context, userID uuid.UUID, arg repository.CreateSavingsGoalParams) (models.SavingsGoal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error)
	UpdateGoal(ctx context.Context, userID uuid.UUID, id uuid.UUID, arg repository.UpdateSavingsGoalParams) (models.SavingsGoal, error)
	Deposit(ctx context.Context, userID uuid.UUID, goalID uuid.UUID, amount decimal.Decimal) (models.SavingsGoal, error)
	DeleteGoal(ctx context.Context, userID uuid.UUID, id uuid.UUID) error

	CreateTool(ctx context.Context, userID uuid.UUID, arg repository.CreateSavingsToolParams) (models.SavingsTool, error)
	ListTools(ctx context.Context, userID uuid.UUID) ([]models.SavingsTool, error)
	DeleteTool(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	financeService financeService,
	l logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/signup", handleSignUp(authService, l))
	api.Handle("POST /auth/signin", handleSignIn(authService, l))
	api.Handle("POST /auth/refresh", handleRefresh(authService, l))
	api.Handle("POST /auth/logout", handleLogout(authService, l))

	api.Handle("GET /me", withAuth(handleMe()))

	api.Handle("POST /transactions", withAuth(handleCreateTransaction(financeService, l)))
	api.Handle("GET /transactions", withAuth(handleListTransactions(financeService, l)))
	api.Handle("PUT /transactions/{id}", withAuth(handleUpdateTransaction(financeService, l)))
	api.Handle("DELETE /transactions/{id}", withAuth(handleDeleteTransaction(financeService, l)))

	api.Handle("POST /categories", withAuth(handleCreateCategory(financeService, l)))
	api.Handle("GET /categories", withAuth(handleListCategories(financeService, l)))
	api.Handle("PUT /categories/{id}", withAuth(handleRenameCategory(financeService, l)))
	api.Handle("DELETE /categories/{id}", withAuth(handleDeleteCategory(financeService, l)))

	api.Handle("POST /goals", withAuth(handleCreateGoal(financeService, l)))
	api.Handle("GET /goals", withAuth(handleListGoals(financeService, l)))
	api.Handle("PUT /goals/{id}", withAuth(handleUpdateGoal(financeService, l)))
	api.Handle("POST /goals/{id}/deposit", withAuth(handleDeposit(financeService, l)))
	api.Handle("DELETE /goals/{id}", withAuth(handleDeleteGoal(financeService, l)))

	api.Handle("POST /tools", withAuth(handleCreateTool(financeService, l)))
	api.Handle("GET /tools", withAuth(handleListTools(financeService, l)))
	api.Handle("DELETE /tools/{id}", withAuth(handleDeleteTool(financeService, l)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root,
		middleware.LoggerMiddleware(l),
	)
}
