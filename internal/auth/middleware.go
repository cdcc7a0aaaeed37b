package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"mhregistry/internal/registry"
	"mhregistry/pkg/domain"
	dErrors "mhregistry/pkg/domain-errors"
	"mhregistry/pkg/platform/httputil"
	"mhregistry/pkg/requestcontext"
)

type groupKey struct{}

// GroupFrom retrieves the authenticated account group from the context,
// defaulting to the general group.
func GroupFrom(ctx context.Context) registry.Group {
	if group, ok := ctx.Value(groupKey{}).(registry.Group); ok {
		return group
	}
	return registry.GroupGeneral
}

// WithGroup injects an account group into the context. Exposed for tests.
func WithGroup(ctx context.Context, group registry.Group) context.Context {
	return context.WithValue(ctx, groupKey{}, group)
}

// RequireAccount authenticates the bearer token and stamps the request
// context with the account, username, and group every downstream layer
// reads. Staff may act on behalf of another account via the Account-Id
// header.
func RequireAccount(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized request, missing bearer token",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := verifier.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized request, invalid token",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
					"error", err)
				httputil.WriteError(w, err)
				return
			}

			accountID := domain.AccountID(claims.AccountID)
			if header := r.Header.Get("Account-Id"); header != "" && claims.IsStaff() {
				accountID = domain.AccountID(header)
			}
			if accountID == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token carries no account"))
				return
			}

			ctx = requestcontext.WithAccountID(ctx, accountID)
			ctx = requestcontext.WithUsername(ctx, claims.Username)
			ctx = WithGroup(ctx, claims.Group())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
