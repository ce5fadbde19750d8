package identity

import (
	"time"

	id "checkin/pkg/domain"
)

// VerifiedIdentity is the result of the upstream OAuth exchange: a subject the
// provider has already authenticated and an email it has already verified.
// The resolver trusts these fields; it only decides whether the identity is
// admitted and which employee record it maps to.
type VerifiedIdentity struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// Employee is the internal identity record. Created on first domain-validated
// login, updated on later logins when the provider reports changes, never
// deleted here (admin deletion is external and cascades to attendance).
type Employee struct {
	ID          id.EmployeeID
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
