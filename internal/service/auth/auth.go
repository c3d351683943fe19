package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
	"github.com/avoronov/budgetly/internal/service/auth/tokenmanager"
)

type Config struct {
	// Secret key to sign token payloads
	// Required to be set
	SecretKey string

	// Access and refresh token lifetimes
	// If not set then token manager defaults are used (15m and 7d)
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Bcrypt work factors
	// If not set then PasswordHashCost and TokenHashCost are used
	PasswordCost int
	TokenCost    int

	// Hasher to use for passwords, bcrypt with PasswordCost if not set
	PasswordHasher Hasher

	// Clock to use, time.Now if not set
	Now func() time.Time
}

// SignUpParams carries everything needed to create an identity
type SignUpParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Result of signup and signin: a token pair plus the user profile.
// User carries the password hash internally, handlers must never render it.
type Result struct {
	Pair models.TokenPair
	User models.User
}

// Auth service: signup, signin, refresh rotation, logout and access token
// authentication
type AuthService struct {
	tokens         *tokenmanager.TokenManager
	passwordHasher Hasher
	store          *RefreshTokenStore
	userRepo       repository.UserRepo
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	tokens, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  cfg.SecretKey,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Now:        cfg.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	passwordHasher := cfg.PasswordHasher
	if passwordHasher == nil {
		cost := cfg.PasswordCost
		if cost == 0 {
			cost = PasswordHashCost
		}
		passwordHasher = BcryptHasher{Cost: cost}
	}

	tokenCost := cfg.TokenCost
	if tokenCost == 0 {
		tokenCost = TokenHashCost
	}

	store := NewRefreshTokenStore(
		BcryptHasher{Cost: tokenCost},
		storage.Refresh(),
		tokens.RefreshTTL(),
		cfg.Now,
	)

	return &AuthService{
		tokens:         tokens,
		passwordHasher: passwordHasher,
		store:          store,
		userRepo:       storage.User(),
	}, nil
}

// SignUp creates an identity and issues the first token pair.
// The email pre-check is a fast path only: the unique constraint on
// users.email is what actually guards against concurrent signups.
func (s *AuthService) SignUp(ctx context.Context, params SignUpParams) (Result, error) {
	hash, err := s.passwordHasher.Hash(params.Password)
	if err != nil {
		return Result{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return Result{}, apperrors.ErrEmailTaken
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:        params.Email,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
	})
	switch {
	case errors.Is(err, apperrors.ErrEmailTaken):
		return Result{}, apperrors.ErrEmailTaken
	case err != nil:
		return Result{}, fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrUserCreateFailed)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return Result{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return Result{Pair: pair, User: user}, nil
}

// SignIn verifies credentials and issues a fresh token pair.
// Unknown email and wrong password collapse to the same error, the caller
// must not learn whether the account exists.
func (s *AuthService) SignIn(ctx context.Context, email string, password string) (Result, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return Result{}, fmt.Errorf("lookup failed: %s. Err: %w", err.Error(), apperrors.ErrInvalidCredentials)
	}

	if err := s.passwordHasher.Compare(user.PasswordHash, password); err != nil {
		return Result{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return Result{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return Result{Pair: pair, User: user}, nil
}

// Refresh rotates the token pair: the presented token must verify
// cryptographically AND match the stored hash, then a brand new pair replaces
// it. Every failure collapses to ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (models.TokenPair, error) {
	fail := func(err error) (models.TokenPair, error) {
		return models.TokenPair{}, fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrInvalidRefreshToken)
	}

	claims, err := s.tokens.ParseRefresh(rawRefresh)
	if err != nil {
		return fail(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return fail(err)
	}

	if err := s.store.Validate(ctx, userID, rawRefresh); err != nil {
		return fail(err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fail(err)
	}

	// Rotation point: storing the new token overwrites the old record
	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return fail(err)
	}

	// Safety net for stores without upsert-per-user semantics. The upsert
	// above already replaced the record, so this matches nothing.
	if err := s.store.Revoke(ctx, userID, rawRefresh); err != nil {
		return fail(err)
	}

	return pair, nil
}

// Logout revokes the presented refresh token. A token that fails to decode is
// an error, a well formed token that is unknown or already revoked is not:
// logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	claims, err := s.tokens.ParseRefresh(rawRefresh)
	if err != nil {
		return fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrLogoutFailed)
	}

	userID, err := claims.UserID()
	if err != nil {
		return fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrLogoutFailed)
	}

	if err := s.store.Revoke(ctx, userID, rawRefresh); err != nil {
		return fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrLogoutFailed)
	}

	return nil
}

// Authenticate resolves an access token to the user it names. The user is
// re-fetched so a token for a vanished identity does not authenticate.
// Bad token and missing user collapse to ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, rawAccess string) (models.User, error) {
	claims, err := s.tokens.ParseAccess(rawAccess)
	if err != nil {
		return models.User{}, fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrUnauthenticated)
	}

	userID, err := claims.UserID()
	if err != nil {
		return models.User{}, fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrUnauthenticated)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s. Err: %w", err.Error(), apperrors.ErrUnauthenticated)
	}

	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.store.Store(ctx, user.ID, refresh.Value); err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
