// Package httpserver builds the http.Server hosting the tracker's
// operational endpoints.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with a bounded header-read timeout so slow clients
// cannot pin accept-loop goroutines. Request and write deadlines stay
// unbounded: the audit queries and the manual evaluate trigger are the only
// long calls, and both are bounded by their store contexts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
