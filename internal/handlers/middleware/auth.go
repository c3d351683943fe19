package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avoronov/budgetly/internal/handlers/render"
	"github.com/avoronov/budgetly/internal/handlers/userctx"
	"github.com/avoronov/budgetly/internal/models"
)

type authenticator interface {
	// Resolve access token to the user it names
	// Has to return apperrors.ErrUnauthenticated on any failure
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

// AuthMiddleware guards protected routes: it takes the bearer token from the
// Authorization header, resolves it to a user and puts the user into the
// request context. Every failure is the same 401, the caller learns nothing
// about why.
func AuthMiddleware(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := a.Authenticate(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const scheme = "Bearer "

	header := r.Header.Get("Authorization")
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}

	return header[len(scheme):], true
}
