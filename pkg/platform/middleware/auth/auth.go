// Package auth holds the middleware that gates protected routes on a live
// session. Token signature alone is not enough: the validator re-checks the
// server-side record, so revoked and expired sessions die here.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "checkin/pkg/domain"
	"checkin/pkg/requestcontext"
)

// SessionValidator verifies a bearer token and returns the ids of the live
// session it belongs to.
type SessionValidator interface {
	ValidateBearer(ctx context.Context, bearer string) (id.EmployeeID, id.SessionID, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireSession rejects requests without a valid live session and injects
// the authenticated employee and session ids into the request context.
func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			bearer, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || bearer == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			employeeID, sessionID, err := validator.ValidateBearer(ctx, bearer)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				return
			}

			ctx = requestcontext.WithEmployeeID(ctx, employeeID)
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
