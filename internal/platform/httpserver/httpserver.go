package httpserver

import (
	"net/http"
	"time"
)

// New wraps the handler in an http.Server with timeouts suited to the API's
// small request bodies. Slow-client protection lives here, not in handlers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
