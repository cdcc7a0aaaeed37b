// Package requesttime pins a single "now" per HTTP request. Every
// timestamp derived during one filing (registration, notes, expiry
// arithmetic) reads the same instant via requestcontext.Now.
package requesttime

import (
	"net/http"
	"time"

	"mhregistry/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
