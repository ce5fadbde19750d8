package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"checkin/internal/attendance"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

// PostgresRecordStore persists attendance records in PostgreSQL. The
// attendance_one_per_day unique constraint and the check-out-is-null update
// guard are what make check-in and check-out linearizable; the Go code never
// does a read-then-write.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

// Insert creates the day's record. ON CONFLICT DO NOTHING turns a lost race
// into zero affected rows, reported as sentinel.ErrConflict.
func (s *PostgresRecordStore) Insert(ctx context.Context, record *attendance.Record) error {
	prepared := *record
	if prepared.ID.IsNil() {
		prepared.ID = id.NewRecordID()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO attendance_records (id, employee_id, work_day, check_in_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (employee_id, work_day) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(prepared.ID), uuid.UUID(prepared.EmployeeID),
		prepared.WorkDay.String(), prepared.CheckInTime, now,
	)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}

	record.ID = prepared.ID
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// SetCheckOut fills the check-out field, guarded by check_out_time IS NULL
// so concurrent check-outs resolve to one winner. The loser is told apart
// from "never checked in" by a follow-up read.
func (s *PostgresRecordStore) SetCheckOut(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay, at time.Time) (*attendance.Record, error) {
	query := `
		UPDATE attendance_records
		SET check_out_time = $3, updated_at = $4
		WHERE employee_id = $1 AND work_day = $2 AND check_out_time IS NULL
		RETURNING id, employee_id, work_day, check_in_time, check_out_time, created_at, updated_at
	`
	row := s.db.QueryRowContext(ctx, query,
		uuid.UUID(employeeID), workDay.String(), at, time.Now().UTC(),
	)
	record, err := scanRecord(row)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Either no record for the day or the record is already complete.
		if _, findErr := s.FindByDay(ctx, employeeID, workDay); findErr == nil {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, sentinel.ErrNotFound
	}
	return record, err
}

func (s *PostgresRecordStore) FindByDay(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay) (*attendance.Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE employee_id = $1 AND work_day = $2`,
		uuid.UUID(employeeID), workDay.String(),
	)
	return scanRecord(row)
}

// ListRange returns records with from <= work_day <= to, newest first.
func (s *PostgresRecordStore) ListRange(ctx context.Context, employeeID id.EmployeeID, from, to id.WorkDay) ([]*attendance.Record, error) {
	query := selectRecord + `
		WHERE employee_id = $1 AND work_day BETWEEN $2 AND $3
		ORDER BY work_day DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(employeeID), from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var out []*attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return out, nil
}

const selectRecord = `
	SELECT id, employee_id, work_day, check_in_time, check_out_time, created_at, updated_at
	FROM attendance_records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*attendance.Record, error) {
	var (
		record     attendance.Record
		recordID   uuid.UUID
		employeeID uuid.UUID
		workDay    time.Time
		checkOut   sql.NullTime
	)
	err := row.Scan(&recordID, &employeeID, &workDay, &record.CheckInTime,
		&checkOut, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan attendance record: %w", err)
	}

	record.ID = id.RecordID(recordID)
	record.EmployeeID = id.EmployeeID(employeeID)
	record.WorkDay = id.WorkDayOf(workDay, time.UTC)
	if checkOut.Valid {
		checkOutTime := checkOut.Time
		record.CheckOutTime = &checkOutTime
	}
	return &record, nil
}
