// Package domain holds shared domain primitives: typed identifiers and the
// WorkDay civil date. Validity is enforced at parse time so services never
// see malformed ids.
package domain

import (
	"github.com/google/uuid"

	dErrors "checkin/pkg/domain-errors"
)

// EmployeeID identifies an employee record. Distinct from SessionID at the
// type level so the two can never be swapped silently.
type EmployeeID uuid.UUID

// SessionID identifies an issued session.
type SessionID uuid.UUID

// RecordID identifies one attendance record.
type RecordID uuid.UUID

// NewEmployeeID returns a fresh random employee id.
func NewEmployeeID() EmployeeID {
	return EmployeeID(uuid.New())
}

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// NewRecordID returns a fresh random attendance record id.
func NewRecordID() RecordID {
	return RecordID(uuid.New())
}

// ParseEmployeeID validates and returns an EmployeeID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseEmployeeID(s string) (EmployeeID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EmployeeID{}, err
	}
	return EmployeeID(u), nil
}

// ParseSessionID validates and returns a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (id EmployeeID) String() string { return uuid.UUID(id).String() }
func (id EmployeeID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id RecordID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical UUID string; the nil id
// renders as the empty string so optional fields serialize cleanly.
func (id EmployeeID) MarshalText() ([]byte, error) {
	if id.IsNil() {
		return []byte(""), nil
	}
	return []byte(id.String()), nil
}

func (id *EmployeeID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = EmployeeID{}
		return nil
	}
	parsed, err := ParseEmployeeID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id SessionID) MarshalText() ([]byte, error) {
	if id.IsNil() {
		return []byte(""), nil
	}
	return []byte(id.String()), nil
}

func (id *SessionID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = SessionID{}
		return nil
	}
	parsed, err := ParseSessionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
