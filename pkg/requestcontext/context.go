// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware (account header, JWT claims, request ID,
// request time) and consumed by services and stores. Keeping this package
// free of net/http lets the registry core avoid transport imports.
//
// Usage in services (read values):
//
//	accountID := requestcontext.AccountID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithAccountID(ctx, "PS12345")
package requestcontext

import (
	"context"
	"time"

	"mhregistry/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	accountIDKey   struct{}
	usernameKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// AccountID retrieves the submitting account from the context.
func AccountID(ctx context.Context) domain.AccountID {
	if accountID, ok := ctx.Value(accountIDKey{}).(domain.AccountID); ok {
		return accountID
	}
	return ""
}

// WithAccountID injects an account ID into the context.
func WithAccountID(ctx context.Context, accountID domain.AccountID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// Username retrieves the authenticated username from the context.
func Username(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey{}).(string); ok {
		return username
	}
	return ""
}

// WithUsername injects the authenticated username into the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (batch jobs, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for batch jobs that need a consistent time across one run.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
