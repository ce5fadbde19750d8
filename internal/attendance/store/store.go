package store

import (
	"context"
	"time"

	"checkin/internal/attendance"
	id "checkin/pkg/domain"
)

// RecordStore persists attendance records. Mutations lean on the storage
// layer's own atomicity: Insert resolves concurrent same-day check-ins to
// one winner via the (employee, work-day) uniqueness constraint, and
// SetCheckOut is a conditional update guarded by "check-out is still unset".
//
// Sentinel contract:
//   - Insert returns sentinel.ErrConflict when a record for the
//     (employee, work-day) key already exists.
//   - SetCheckOut returns sentinel.ErrNotFound when no record exists for the
//     key, and sentinel.ErrAlreadyUsed when the record's check-out is set.
//   - FindByDay returns sentinel.ErrNotFound when the day has no record.
type RecordStore interface {
	Insert(ctx context.Context, record *attendance.Record) error
	SetCheckOut(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay, at time.Time) (*attendance.Record, error)
	FindByDay(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay) (*attendance.Record, error)
	ListRange(ctx context.Context, employeeID id.EmployeeID, from, to id.WorkDay) ([]*attendance.Record, error)
}
