package apperrors

import (
	"errors"
)

var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrUserCreateFailed = errors.New("user create failed")
	ErrUserNotFound     = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")

	ErrInvalidToken         = errors.New("token is invalid")
	ErrInvalidRefreshToken  = errors.New("refresh token is invalid")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrLogoutFailed         = errors.New("logout failed")

	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrKindInvalid       = errors.New("kind must be income or expense")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAmountInvalid       = errors.New("amount must be positive")

	ErrSavingsGoalNotFound = errors.New("savings goal not found")
	ErrSavingsToolNotFound = errors.New("savings tool not found")
)
