package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"checkin/internal/identity"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresEmployeeStore persists employees in PostgreSQL. The subject-id and
// email unique constraints are the source of truth for identity matching.
type PostgresEmployeeStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresEmployeeStore {
	return &PostgresEmployeeStore{db: db}
}

// Upsert resolves the candidate against the subject-id and email constraints
// inside one transaction, so concurrent logins for the same person collapse
// onto a single row.
func (s *PostgresEmployeeStore) Upsert(ctx context.Context, candidate *identity.Employee) (*identity.Employee, error) {
	prepared := *candidate
	if prepared.ID.IsNil() {
		prepared.ID = id.NewEmployeeID()
	}
	prepared.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upsert employee: %w", err)
	}
	defer tx.Rollback()

	employee, err := s.upsertBySubject(ctx, tx, &prepared)
	if err != nil {
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
			return nil, err
		}
		// Email already belongs to a row with a different subject id: the
		// provider re-provisioned the account. Adopt the existing row.
		employee, err = s.adoptByEmail(ctx, tx, &prepared)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert employee: %w", err)
	}
	return employee, nil
}

func (s *PostgresEmployeeStore) upsertBySubject(ctx context.Context, tx *sql.Tx, candidate *identity.Employee) (*identity.Employee, error) {
	query := `
		INSERT INTO employees (id, subject_id, email, display_name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (subject_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, subject_id, email, display_name, avatar_url, created_at, updated_at
	`
	row := tx.QueryRowContext(ctx, query,
		uuid.UUID(candidate.ID), candidate.SubjectID, candidate.Email,
		candidate.DisplayName, candidate.AvatarURL, candidate.UpdatedAt,
	)
	return scanEmployee(row)
}

func (s *PostgresEmployeeStore) adoptByEmail(ctx context.Context, tx *sql.Tx, candidate *identity.Employee) (*identity.Employee, error) {
	query := `
		UPDATE employees SET
			subject_id = $2,
			display_name = $3,
			avatar_url = $4,
			updated_at = $5
		WHERE email = $1
		RETURNING id, subject_id, email, display_name, avatar_url, created_at, updated_at
	`
	row := tx.QueryRowContext(ctx, query,
		candidate.Email, candidate.SubjectID,
		candidate.DisplayName, candidate.AvatarURL, candidate.UpdatedAt,
	)
	employee, err := scanEmployee(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		// The conflicting row vanished between statements; surface a
		// retryable conflict rather than inventing a row.
		return nil, fmt.Errorf("adopt employee by email: %w", sentinel.ErrConflict)
	}
	return employee, err
}

func (s *PostgresEmployeeStore) FindByID(ctx context.Context, employeeID id.EmployeeID) (*identity.Employee, error) {
	row := s.db.QueryRowContext(ctx, selectEmployee+` WHERE id = $1`, uuid.UUID(employeeID))
	return scanEmployee(row)
}

func (s *PostgresEmployeeStore) FindBySubjectID(ctx context.Context, subjectID string) (*identity.Employee, error) {
	row := s.db.QueryRowContext(ctx, selectEmployee+` WHERE subject_id = $1`, subjectID)
	return scanEmployee(row)
}

func (s *PostgresEmployeeStore) FindByEmail(ctx context.Context, address string) (*identity.Employee, error) {
	row := s.db.QueryRowContext(ctx, selectEmployee+` WHERE email = $1`, address)
	return scanEmployee(row)
}

const selectEmployee = `
	SELECT id, subject_id, email, display_name, avatar_url, created_at, updated_at
	FROM employees`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*identity.Employee, error) {
	var (
		employee   identity.Employee
		employeeID uuid.UUID
	)
	err := row.Scan(&employeeID, &employee.SubjectID, &employee.Email,
		&employee.DisplayName, &employee.AvatarURL, &employee.CreatedAt, &employee.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	employee.ID = id.EmployeeID(employeeID)
	return &employee, nil
}
