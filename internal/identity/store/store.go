package store

import (
	"context"

	"checkin/internal/identity"
	id "checkin/pkg/domain"
)

// EmployeeStore is interface-driven so the resolver stays testable and the
// in-memory and Postgres implementations are interchangeable.
//
// Upsert is the single mutating operation: it matches by subject id first,
// then by email (covers provider re-provisioning where the subject id changes
// but the mailbox survives), updates the mutable fields on a match, or
// inserts the candidate row. Each implementation performs this as one atomic
// step; callers never observe a partial write. The returned employee carries
// the canonical id and created-at of the row that won.
type EmployeeStore interface {
	Upsert(ctx context.Context, candidate *identity.Employee) (*identity.Employee, error)
	FindByID(ctx context.Context, employeeID id.EmployeeID) (*identity.Employee, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*identity.Employee, error)
	FindByEmail(ctx context.Context, address string) (*identity.Employee, error)
}
