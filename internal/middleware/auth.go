package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/policy"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/token"
	"github.com/vaughan-dsouza/tasktracer/internal/utils"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFrom returns the authenticated identity attached by Auth.
func IdentityFrom(ctx context.Context) (policy.Identity, bool) {
	id, ok := ctx.Value(identityKey).(policy.Identity)
	return id, ok
}

// WithIdentity attaches an identity to the context. Exported for tests of
// downstream handlers.
func WithIdentity(ctx context.Context, id policy.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Auth verifies the bearer token on each request and attaches the caller's
// identity to the context. The user id is re-resolved against the store so
// tokens of deleted users are rejected before their natural expiry.
func Auth(tokens *token.Service, users repo.UserStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			userID, role, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("token rejected", zap.Error(err), zap.String("path", r.URL.Path))
				switch {
				case errors.Is(err, token.ErrExpiredToken):
					utils.JSONError(w, http.StatusUnauthorized, "token expired")
				default:
					utils.JSONError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			// Token stays valid after deletion until expiry; this check
			// closes that hole for deleted users.
			if _, err := users.GetByID(r.Context(), userID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					logger.Warn("token for unknown user", zap.Int64("user_id", userID))
					utils.JSONError(w, http.StatusUnauthorized, "unknown user")
					return
				}
				utils.ServerError(w)
				return
			}

			ctx := WithIdentity(r.Context(), policy.Identity{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards an admin-only route, delegating the decision to the
// access policy. Must run after Auth.
func RequireAdmin(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
				return
			}
			if !policy.Permit(id, action, 0) {
				utils.JSONError(w, http.StatusForbidden, "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
