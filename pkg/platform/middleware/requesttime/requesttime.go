// Package requesttime pins a single clock reading per request. Check-in and
// check-out store an instant and derive a work day from it; reading the clock
// twice could put them on different sides of midnight.
package requesttime

import (
	"net/http"
	"time"

	"checkin/pkg/requestcontext"
)

// Middleware reads the clock once and makes that instant the request's "now".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
