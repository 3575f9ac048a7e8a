package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/portfolio-site/internal/apperr"
	"github.com/ayush/portfolio-site/internal/auth"
	"github.com/ayush/portfolio-site/internal/httpx"
	"github.com/ayush/portfolio-site/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// Authorizer resolves a bearer token to a user holding requiredRole.
type Authorizer interface {
	Authorize(ctx context.Context, token, requiredRole string) (models.PublicUser, error)
}

// RequireAuth validates the bearer token and injects the user into the
// request context. An empty role admits any authenticated user.
func RequireAuth(authz Authorizer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r)
			if token == "" {
				httpx.WriteError(w, r, apperr.Wrap(apperr.ErrUnauthorized, "Access denied"))
				return
			}

			user, err := authz.Authorize(r.Context(), token, role)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the user RequireAuth placed in ctx.
func UserFrom(ctx context.Context) (models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(models.PublicUser)
	return u, ok
}
