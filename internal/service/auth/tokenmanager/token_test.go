package tokenmanager

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/models"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:        uuid.New(),
		Email:     "a@b.com",
		FirstName: "A",
		LastName:  "B",
		CreatedAt: mustParseTime("2024-01-01 19:00:01Z"),
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: "secret"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "secret", m.key, "secret key should be set")
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("fail without secret", func(t *testing.T) {
		_, err := New(Config{})

		require.Error(t, err, "empty secret key must not be accepted")
	})

	t.Run("access token roundtrip", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		issued, err := m.IssueAccess(testUser)
		require.NoError(t, err)
		require.NotEmpty(t, issued.Value)
		require.WithinDuration(t, time.Now().Add(defaultAccessTokenTTL), issued.ExpiresAt, time.Minute)

		claims, err := m.ParseAccess(issued.Value)
		require.NoError(t, err, "freshly issued token should parse ok")

		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, userID, "subject should be the user id")
		assert.Equal(t, testUser.Email, claims.Email)
		assert.Equal(t, testUser.FirstName, claims.FirstName)
		assert.Equal(t, testUser.LastName, claims.LastName)
		assert.Equal(t, TypeAccess, claims.TokenType)
	})

	t.Run("refresh token roundtrip", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		issued, err := m.IssueRefresh(testUser.ID)
		require.NoError(t, err)
		require.NotEmpty(t, issued.Value)

		claims, err := m.ParseRefresh(issued.Value)
		require.NoError(t, err)

		userID, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, testUser.ID, userID)
		assert.Equal(t, TypeRefresh, claims.TokenType)
	})

	t.Run("token types not interchangeable", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		access, err := m.IssueAccess(testUser)
		require.NoError(t, err)
		refresh, err := m.IssueRefresh(testUser.ID)
		require.NoError(t, err)

		_, err = m.ParseRefresh(access.Value)
		require.Error(t, err, "access token must not be accepted as refresh")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)

		_, err = m.ParseAccess(refresh.Value)
		require.Error(t, err, "refresh token must not be accepted as access")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("fail if expired", func(t *testing.T) {
		// Issue in the past, verify with the real clock
		past := time.Now().Add(-48 * time.Hour)
		issuer, err := New(Config{
			SecretKey: "test-secret-key",
			AccessTTL: 15 * time.Minute,
			Now:       func() time.Time { return past },
		})
		require.NoError(t, err)

		issued, err := issuer.IssueAccess(testUser)
		require.NoError(t, err)

		verifier, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		_, err = verifier.ParseAccess(issued.Value)
		require.Error(t, err, "expired token must not parse")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("fail if signed with other key", func(t *testing.T) {
		issuer, err := New(Config{SecretKey: "one-secret"})
		require.NoError(t, err)
		verifier, err := New(Config{SecretKey: "other-secret"})
		require.NoError(t, err)

		issued, err := issuer.IssueAccess(testUser)
		require.NoError(t, err)

		_, err = verifier.ParseAccess(issued.Value)
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("fail if malformed", func(t *testing.T) {
		m, err := New(Config{SecretKey: "test-secret-key"})
		require.NoError(t, err)

		_, err = m.ParseAccess("not-a-jwt-at-all")
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)

		_, err = m.ParseRefresh("")
		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
