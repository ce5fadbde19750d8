package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"

	"checkin/internal/identity"
	"checkin/internal/session"
	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/httputil"
	"checkin/pkg/requestcontext"
)

// IdentityResolver admits a verified identity and maps it to an employee.
type IdentityResolver interface {
	Resolve(ctx context.Context, verified identity.VerifiedIdentity) (*identity.Employee, error)
}

// SessionManager issues and revokes sessions for admitted employees.
type SessionManager interface {
	Issue(ctx context.Context, employeeID id.EmployeeID) (*session.IssuedSession, error)
	Revoke(ctx context.Context, sessionID id.SessionID) error
}

// EmployeeDirectory looks up employee records for the /auth/me read.
type EmployeeDirectory interface {
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*identity.Employee, error)
}

type AuthHandler struct {
	resolver  IdentityResolver
	sessions  SessionManager
	employees EmployeeDirectory
	logger    *slog.Logger
}

func NewAuthHandler(resolver IdentityResolver, sessions SessionManager, employees EmployeeDirectory, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		resolver:  resolver,
		sessions:  sessions,
		employees: employees,
		logger:    logger,
	}
}

// loginRequest carries the identity already verified by the upstream OAuth
// exchange, which terminates in the excluded web layer.
type loginRequest struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Employee  employeePayload `json:"employee"`
}

type employeePayload struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := validateLoginRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	employee, err := h.resolver.Resolve(ctx, identity.VerifiedIdentity{
		SubjectID: req.SubjectID,
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issued, err := h.sessions.Issue(ctx, employee.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.Session.ExpiresAt,
		Employee:  toEmployeePayload(employee),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.sessions.Revoke(ctx, requestcontext.SessionID(ctx)); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employee, err := h.employees.FindByID(ctx, requestcontext.EmployeeID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load employee",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load employee"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEmployeePayload(employee))
}

func validateLoginRequest(req loginRequest) error {
	if !govalidator.StringLength(req.SubjectID, "1", "255") {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid subject_id")
	}
	if !govalidator.StringLength(req.Email, "1", "255") || !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email")
	}
	if req.AvatarURL != "" && !govalidator.IsURL(req.AvatarURL) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid avatar_url")
	}
	return nil
}

func toEmployeePayload(employee *identity.Employee) employeePayload {
	return employeePayload{
		ID:          employee.ID.String(),
		Email:       employee.Email,
		DisplayName: employee.DisplayName,
		AvatarURL:   employee.AvatarURL,
	}
}
