package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with conservative timeouts. Disclosure responses
// are small JSON bodies, so short write deadlines are safe.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Above the 30s handler timeout so the timeout response itself
		// still gets written.
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
