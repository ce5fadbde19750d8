//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"checkin/internal/attendance"
	"checkin/internal/attendance/store"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/testutil/containers"
)

type PostgresRecordStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresRecordStore
	ctx   context.Context
	day   id.WorkDay
}

func TestPostgresRecordStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRecordStoreSuite))
}

func (s *PostgresRecordStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
	s.ctx = context.Background()

	day, err := id.ParseWorkDay("2026-03-02")
	s.Require().NoError(err)
	s.day = day
}

func (s *PostgresRecordStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "attendance_records", "employees"))
}

// seedEmployee satisfies the foreign key from attendance_records.
func (s *PostgresRecordStoreSuite) seedEmployee() id.EmployeeID {
	employeeID := id.NewEmployeeID()
	_, err := s.pg.DB.ExecContext(s.ctx,
		`INSERT INTO employees (id, subject_id, email) VALUES ($1, $2, $3)`,
		uuid.UUID(employeeID), "sub-"+employeeID.String(), employeeID.String()+"@company.co",
	)
	s.Require().NoError(err)
	return employeeID
}

func (s *PostgresRecordStoreSuite) record(employeeID id.EmployeeID, day id.WorkDay) *attendance.Record {
	return &attendance.Record{
		EmployeeID:  employeeID,
		WorkDay:     day,
		CheckInTime: day.Time(time.UTC).Add(9 * time.Hour),
	}
}

func (s *PostgresRecordStoreSuite) TestInsertAndFindRoundTrip() {
	employeeID := s.seedEmployee()
	record := s.record(employeeID, s.day)
	s.Require().NoError(s.store.Insert(s.ctx, record))
	s.False(record.ID.IsNil())

	found, err := s.store.FindByDay(s.ctx, employeeID, s.day)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)
	s.Equal(s.day, found.WorkDay)
	s.True(found.CheckInTime.Equal(record.CheckInTime))
	s.Nil(found.CheckOutTime)
}

func (s *PostgresRecordStoreSuite) TestConcurrentInsertsHaveOneWinner() {
	employeeID := s.seedEmployee()

	const goroutines = 16
	var wg sync.WaitGroup
	var winners atomic.Int32
	var conflicts atomic.Int32
	var unexpected atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.store.Insert(s.ctx, s.record(employeeID, s.day)); {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one check-in should win")
	s.Equal(int32(goroutines-1), conflicts.Load())
	s.Equal(int32(0), unexpected.Load())

	var count int
	err := s.pg.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM attendance_records WHERE employee_id = $1`,
		uuid.UUID(employeeID)).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *PostgresRecordStoreSuite) TestConcurrentCheckOutsHaveOneWinner() {
	employeeID := s.seedEmployee()
	s.Require().NoError(s.store.Insert(s.ctx, s.record(employeeID, s.day)))

	const goroutines = 16
	var wg sync.WaitGroup
	var winners atomic.Int32
	var alreadyOut atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch _, err := s.store.SetCheckOut(s.ctx, employeeID, s.day, time.Now()); {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				alreadyOut.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one check-out should win")
	s.Equal(int32(goroutines-1), alreadyOut.Load())
}

func (s *PostgresRecordStoreSuite) TestSetCheckOutWithoutRecord() {
	employeeID := s.seedEmployee()
	_, err := s.store.SetCheckOut(s.ctx, employeeID, s.day, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRecordStoreSuite) TestCheckOutNeverOverwritten() {
	employeeID := s.seedEmployee()
	s.Require().NoError(s.store.Insert(s.ctx, s.record(employeeID, s.day)))

	first := s.day.Time(time.UTC).Add(17 * time.Hour)
	_, err := s.store.SetCheckOut(s.ctx, employeeID, s.day, first)
	s.Require().NoError(err)

	_, err = s.store.SetCheckOut(s.ctx, employeeID, s.day, first.Add(time.Hour))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByDay(s.ctx, employeeID, s.day)
	s.Require().NoError(err)
	s.True(found.CheckOutTime.Equal(first))
}

func (s *PostgresRecordStoreSuite) TestListRange() {
	employeeID := s.seedEmployee()
	other := s.seedEmployee()

	for _, back := range []int{0, 2, 5} {
		s.Require().NoError(s.store.Insert(s.ctx, s.record(employeeID, s.day.AddDays(-back))))
	}
	s.Require().NoError(s.store.Insert(s.ctx, s.record(other, s.day)))

	records, err := s.store.ListRange(s.ctx, employeeID, s.day.AddDays(-13), s.day)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal(s.day, records[0].WorkDay)
	s.Equal(s.day.AddDays(-2), records[1].WorkDay)
	s.Equal(s.day.AddDays(-5), records[2].WorkDay)
}

func (s *PostgresRecordStoreSuite) TestDeletingEmployeeCascades() {
	employeeID := s.seedEmployee()
	s.Require().NoError(s.store.Insert(s.ctx, s.record(employeeID, s.day)))

	_, err := s.pg.DB.ExecContext(s.ctx, `DELETE FROM employees WHERE id = $1`, uuid.UUID(employeeID))
	s.Require().NoError(err)

	_, err = s.store.FindByDay(s.ctx, employeeID, s.day)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
