package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avoronov/budgetly/internal/logger"
	"github.com/avoronov/budgetly/internal/repository/postgres"
	"github.com/avoronov/budgetly/internal/service/auth"
	"github.com/avoronov/budgetly/internal/service/finance"
	"github.com/avoronov/budgetly/internal/testutil"
)

func Test_AuthHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server with the full router over a rolled back transaction
	// Production services are used
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, s *auth.AuthService)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			authService, err := auth.NewService(auth.Config{
				SecretKey:    "test-secret-key",
				PasswordCost: bcrypt.MinCost,
				TokenCost:    bcrypt.MinCost,
			}, storage)
			require.NoError(t, err, "auth service starting error")

			financeService, err := finance.NewService(storage)
			require.NoError(t, err, "finance service starting error")

			srv := httptest.NewServer(NewRouter(authService, financeService, logger.NewNoOpLogger()))
			defer srv.Close()

			fn(srv.URL, authService)
		})
	}

	post := func(t *testing.T, url string, data string) (*http.Response, string) {
		t.Helper()

		resp, err := http.Post(url, "application/json", strings.NewReader(data))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp, string(body)
	}

	signUpData := `{
		"email": "a@b.com",
		"password": "Str0ng!Passw0rd",
		"firstName": "Alice",
		"lastName": "Smith"
	}`

	t.Run("signup ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			resp, body := post(t, url+"/api/auth/signup", signUpData)

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			var got struct {
				AccessToken  string       `json:"accessToken"`
				RefreshToken string       `json:"refreshToken"`
				User         UserResponse `json:"user"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.NotEmpty(t, got.AccessToken, "access token should be in response")
			require.NotEmpty(t, got.RefreshToken, "refresh token should be in response")
			require.Equal(t, "a@b.com", got.User.Email)
			require.Equal(t, "Alice", got.User.FirstName)
			require.Equal(t, "Smith", got.User.LastName)
			require.NotContains(t, body, "password", "password data must never leak to response")
		})
	})

	t.Run("signup existed email fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, _ = post(t, url+"/api/auth/signup", signUpData)

			resp, body := post(t, url+"/api/auth/signup", signUpData)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Email already registered"
				}`, body)
		})
	})

	t.Run("signup bad payload fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			data := `{"email": "not-an-email", "password": "short", "firstName": "A", "lastName": "B"}`

			resp, body := post(t, url+"/api/auth/signup", data)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "validation_failed")
			require.Contains(t, body, "email")
			require.Contains(t, body, "password")
		})
	})

	t.Run("signin ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, _ = post(t, url+"/api/auth/signup", signUpData)

			resp, body := post(t, url+"/api/auth/signin", `{"email": "a@b.com", "password": "Str0ng!Passw0rd"}`)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "accessToken")
			require.Contains(t, body, "refreshToken")
		})
	})

	t.Run("signin wrong password fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, _ = post(t, url+"/api/auth/signup", signUpData)

			resp, body := post(t, url+"/api/auth/signin", `{"email": "a@b.com", "password": "wrong-password"}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid email or password"
				}`, body)
		})
	})

	t.Run("signin unknown email fails the same way", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			resp, body := post(t, url+"/api/auth/signin", `{"email": "nobody@nowhere.com", "password": "whatever-pwd"}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid email or password"
				}`, body, "response must not tell whether the account exists")
		})
	})

	t.Run("refresh rotates tokens", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, body := post(t, url+"/api/auth/signup", signUpData)

			var signedUp struct {
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &signedUp))

			resp, body := post(t, url+"/api/auth/refresh", `{"refreshToken": "`+signedUp.RefreshToken+`"}`)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var refreshed struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &refreshed))
			require.NotEmpty(t, refreshed.AccessToken)
			require.NotEqual(t, signedUp.RefreshToken, refreshed.RefreshToken, "refresh token should be rotated")

			// The old token must not refresh again
			resp, body = post(t, url+"/api/auth/refresh", `{"refreshToken": "`+signedUp.RefreshToken+`"}`)
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid refresh token"
				}`, body)
		})
	})

	t.Run("logout then refresh fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, body := post(t, url+"/api/auth/signup", signUpData)

			var signedUp struct {
				RefreshToken string `json:"refreshToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &signedUp))

			resp, body := post(t, url+"/api/auth/logout", `{"refreshToken": "`+signedUp.RefreshToken+`"}`)
			require.Equalf(t, http.StatusNoContent, resp.StatusCode, "not expected code. Body: %s", body)

			// Logout again with the same token is still fine
			resp, _ = post(t, url+"/api/auth/logout", `{"refreshToken": "`+signedUp.RefreshToken+`"}`)
			require.Equal(t, http.StatusNoContent, resp.StatusCode, "logout should be idempotent")

			resp, body = post(t, url+"/api/auth/refresh", `{"refreshToken": "`+signedUp.RefreshToken+`"}`)
			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("logout garbage token fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			resp, body := post(t, url+"/api/auth/logout", `{"refreshToken": "garbage"}`)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Logout failed"
				}`, body)
		})
	})

	t.Run("me returns profile", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			_, body := post(t, url+"/api/auth/signup", signUpData)

			var signedUp struct {
				AccessToken string `json:"accessToken"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &signedUp))

			req, err := http.NewRequest(http.MethodGet, url+"/api/me", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+signedUp.AccessToken)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			respBody, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(respBody))

			var got UserResponse
			require.NoError(t, json.Unmarshal(respBody, &got))
			require.Equal(t, "a@b.com", got.Email)
			require.Equal(t, "Alice", got.FirstName)
		})
	})

	t.Run("me without token fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, s *auth.AuthService) {
			resp, err := http.Get(url + "/api/me")
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})
}
