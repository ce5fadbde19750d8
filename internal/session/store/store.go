package store

import (
	"context"
	"time"

	"checkin/internal/session"
	id "checkin/pkg/domain"
)

// SessionStore persists session records. Implementations return
// sentinel.ErrNotFound for unknown ids and sentinel.ErrAlreadyUsed when
// Revoke targets a session that is already revoked, so the service can keep
// logout idempotent.
type SessionStore interface {
	Create(ctx context.Context, sess *session.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error)
	Revoke(ctx context.Context, sessionID id.SessionID, at time.Time) error
	ListByEmployee(ctx context.Context, employeeID id.EmployeeID) ([]*session.Session, error)
}
