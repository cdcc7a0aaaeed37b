// Package requestid stamps each request with a correlation ID.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"mhregistry/pkg/requestcontext"
)

// Header carries the correlation ID on requests and responses.
const Header = "X-Request-Id"

// Middleware reuses an inbound X-Request-Id or generates one, stores it in
// the request context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
