// Package httpserver builds the registry API server with its timeout
// defaults in one place.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the registration API. Filing handlers finish
// quickly, so the timeouts guard against stalled clients rather than slow
// work.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
