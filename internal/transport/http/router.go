// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and translate their outcomes; no business rules live here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "checkin/pkg/platform/middleware/auth"
	"checkin/pkg/platform/middleware/metadata"
	"checkin/pkg/platform/middleware/requesttime"
)

// NewRouter wires public and session-protected routes. All requests share
// the metadata chain so services can read client ip, user agent, request id,
// and a single request-scoped now from context.
func NewRouter(
	auth *AuthHandler,
	attendance *AttendanceHandler,
	validator authmw.SessionValidator,
	registry *prometheus.Registry,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(metadata.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Post("/auth/login", auth.handleLogin)

	r.Group(func(protected chi.Router) {
		protected.Use(authmw.RequireSession(validator, logger))

		protected.Post("/auth/logout", auth.handleLogout)
		protected.Get("/auth/me", auth.handleMe)

		protected.Post("/attendance/check-in", attendance.handleCheckIn)
		protected.Post("/attendance/check-out", attendance.handleCheckOut)
		protected.Get("/attendance/status", attendance.handleStatus)
		protected.Get("/attendance/history", attendance.handleHistory)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
