// Package session issues and validates the bearer credential that gates
// every attendance operation. A session is a server-side record paired with
// a signed token; revocation and expiry are decided against the record, so
// a token alone is never enough once the session is gone.
package session

import (
	"time"

	id "checkin/pkg/domain"
)

// Session is the server-side session record. ExpiresAt is fixed at issuance;
// activity never extends it.
type Session struct {
	ID          id.SessionID
	EmployeeID  id.EmployeeID
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Device      string
	Fingerprint string
	ClientIP    string
	RevokedAt   *time.Time
}

// Revoked reports whether the session was explicitly revoked.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// ExpiredAt reports whether the session's fixed lifetime has elapsed at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ActiveAt reports whether the session is usable at now.
func (s *Session) ActiveAt(now time.Time) bool {
	return !s.Revoked() && !s.ExpiredAt(now)
}
