package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"checkin/internal/audit"
	"checkin/internal/platform/metrics"
	"checkin/internal/session/device"
	"checkin/internal/session/token"
	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// Validation outcomes. All map to 401 at the transport layer; the distinct
// messages keep logs and clients honest about why the credential died.
var (
	ErrSessionNotFound = dErrors.New(dErrors.CodeUnauthorized, "session not found")
	ErrSessionRevoked  = dErrors.New(dErrors.CodeUnauthorized, "session has been revoked")
	ErrSessionExpired  = dErrors.New(dErrors.CodeUnauthorized, "session has expired")
)

var tracer = otel.Tracer("session")

// Store is the persistence dependency of the service.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)
	Revoke(ctx context.Context, sessionID id.SessionID, at time.Time) error
}

// IssuedSession pairs the server-side record with the signed bearer token
// handed to the client.
type IssuedSession struct {
	Session *Session
	Token   string
}

// Service issues, validates, and revokes sessions. Lifetimes are fixed at
// issuance; there is no sliding extension.
type Service struct {
	store   Store
	tokens  *token.Service
	devices *device.Service
	ttl     time.Duration
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, tokens *token.Service, devices *device.Service, ttl time.Duration, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		tokens:  tokens,
		devices: devices,
		ttl:     ttl,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Issue creates a session for the employee and signs its bearer token.
// Device label, fingerprint, and client IP come from the request context.
func (s *Service) Issue(ctx context.Context, employeeID id.EmployeeID) (*IssuedSession, error) {
	ctx, span := tracer.Start(ctx, "session.Issue")
	defer span.End()

	now := requestcontext.Now(ctx)
	userAgent := requestcontext.UserAgent(ctx)

	sess := &Session{
		ID:          id.NewSessionID(),
		EmployeeID:  employeeID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
		Device:      device.ParseUserAgent(userAgent),
		Fingerprint: s.devices.ComputeFingerprint(userAgent),
		ClientIP:    requestcontext.ClientIP(ctx),
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}

	signed, err := s.tokens.Generate(sess.EmployeeID, sess.ID, sess.IssuedAt, sess.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}

	span.SetAttributes(attribute.String("session.id", sess.ID.String()))
	return &IssuedSession{Session: sess, Token: signed}, nil
}

// Validate verifies the bearer token and re-checks the session record for
// revocation and expiry. The record is authoritative: a verified token whose
// session is gone, revoked, or past its fixed expiry is rejected.
func (s *Service) Validate(ctx context.Context, bearer string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "session.Validate")
	defer span.End()

	started := time.Now()
	defer func() {
		s.metrics.SessionValidation.Observe(time.Since(started).Seconds())
	}()

	claims, err := s.tokens.Validate(bearer)
	if err != nil {
		return nil, err
	}
	sessionID, err := claims.SessionIDTyped()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	sess, err := s.store.FindByID(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if sess.Revoked() {
		return nil, ErrSessionRevoked
	}
	if sess.ExpiredAt(requestcontext.Now(ctx)) {
		return nil, ErrSessionExpired
	}

	presented := s.devices.ComputeFingerprint(requestcontext.UserAgent(ctx))
	if _, drift := s.devices.CompareFingerprints(sess.Fingerprint, presented); drift {
		s.logger.Warn("session device fingerprint drift",
			"session_id", sess.ID.String(),
			"employee_id", sess.EmployeeID.String(),
		)
	}

	return sess, nil
}

// ValidateBearer adapts Validate to the auth middleware contract.
func (s *Service) ValidateBearer(ctx context.Context, bearer string) (id.EmployeeID, id.SessionID, error) {
	sess, err := s.Validate(ctx, bearer)
	if err != nil {
		return id.EmployeeID{}, id.SessionID{}, err
	}
	return sess.EmployeeID, sess.ID, nil
}

// Revoke ends the session. Idempotent: revoking a session that is already
// revoked or already gone is a no-op.
func (s *Service) Revoke(ctx context.Context, sessionID id.SessionID) error {
	ctx, span := tracer.Start(ctx, "session.Revoke")
	defer span.End()

	err := s.store.Revoke(ctx, sessionID, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrAlreadyUsed) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}

	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionSessionRevoked,
		EmployeeID: requestcontext.EmployeeID(ctx),
	})
	return nil
}
