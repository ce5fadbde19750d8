// Package audit records who did what, when. Events are best-effort: a failed
// append is logged and dropped, never surfaced to the business operation that
// emitted it.
package audit

import (
	"time"

	id "checkin/pkg/domain"
)

// Action names an auditable occurrence.
type Action string

const (
	ActionLoginSucceeded      Action = "login_succeeded"
	ActionLoginDomainRejected Action = "login_domain_rejected"
	ActionCheckedIn           Action = "checked_in"
	ActionCheckedOut          Action = "checked_out"
	ActionSessionRevoked      Action = "session_revoked"
)

// Event is one audit record. EmployeeID may be nil for rejected logins that
// never resolved to an employee.
type Event struct {
	ID         string        `json:"id"`
	Action     Action        `json:"action"`
	EmployeeID id.EmployeeID `json:"employee_id,omitempty"`
	Email      string        `json:"email,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	ClientIP   string        `json:"client_ip,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
