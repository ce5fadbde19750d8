// Package attendance is the ledger of daily check-in/check-out cycles. One
// record per (employee, work-day); the cycle runs strictly forward through
// NotCheckedIn, CheckedIn, Completed and happens at most once per day.
package attendance

import (
	"time"

	id "checkin/pkg/domain"
)

// Record is one (employee, work-day) row. Created at check-in, mutated
// exactly once at check-out, never deleted here.
type Record struct {
	ID           id.RecordID
	EmployeeID   id.EmployeeID
	WorkDay      id.WorkDay
	CheckInTime  time.Time
	CheckOutTime *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status is the state of one employee's cycle on one work-day.
type Status string

const (
	StatusNotCheckedIn Status = "not_checked_in"
	StatusCheckedIn    Status = "checked_in"
	StatusCompleted    Status = "completed"
)

// StatusOf derives the cycle state from a record; a nil record means the day
// has not started.
func StatusOf(record *Record) Status {
	switch {
	case record == nil:
		return StatusNotCheckedIn
	case record.CheckOutTime == nil:
		return StatusCheckedIn
	default:
		return StatusCompleted
	}
}

// DayStatus is the read-model for one work-day, as exposed to callers.
type DayStatus struct {
	WorkDay      id.WorkDay
	Status       Status
	CheckInTime  *time.Time
	CheckOutTime *time.Time
}

// DayStatusOf builds the read-model for workDay from its record (nil when
// the employee never checked in that day).
func DayStatusOf(workDay id.WorkDay, record *Record) DayStatus {
	status := DayStatus{WorkDay: workDay, Status: StatusOf(record)}
	if record != nil {
		checkIn := record.CheckInTime
		status.CheckInTime = &checkIn
		if record.CheckOutTime != nil {
			checkOut := *record.CheckOutTime
			status.CheckOutTime = &checkOut
		}
	}
	return status
}
