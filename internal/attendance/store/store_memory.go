package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"checkin/internal/attendance"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

type dayKey struct {
	employeeID id.EmployeeID
	workDay    id.WorkDay
}

// InMemoryRecordStore serializes every mutation behind one mutex, giving the
// same one-winner semantics the Postgres constraints give.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[dayKey]*attendance.Record
}

func NewMemory() *InMemoryRecordStore {
	return &InMemoryRecordStore{
		records: make(map[dayKey]*attendance.Record),
	}
}

func (s *InMemoryRecordStore) Insert(_ context.Context, record *attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{employeeID: record.EmployeeID, workDay: record.WorkDay}
	if _, exists := s.records[key]; exists {
		return sentinel.ErrConflict
	}

	stored := *record
	if stored.ID.IsNil() {
		stored.ID = id.NewRecordID()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.records[key] = &stored

	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	record.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *InMemoryRecordStore) SetCheckOut(_ context.Context, employeeID id.EmployeeID, workDay id.WorkDay, at time.Time) (*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[dayKey{employeeID: employeeID, workDay: workDay}]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if record.CheckOutTime != nil {
		return nil, sentinel.ErrAlreadyUsed
	}

	checkOut := at
	record.CheckOutTime = &checkOut
	record.UpdatedAt = time.Now().UTC()
	return copyRecord(record), nil
}

func (s *InMemoryRecordStore) FindByDay(_ context.Context, employeeID id.EmployeeID, workDay id.WorkDay) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[dayKey{employeeID: employeeID, workDay: workDay}]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return copyRecord(record), nil
}

// ListRange returns the employee's records with from <= work-day <= to,
// newest work-day first. Days without a record are absent.
func (s *InMemoryRecordStore) ListRange(_ context.Context, employeeID id.EmployeeID, from, to id.WorkDay) ([]*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*attendance.Record
	for key, record := range s.records {
		if key.employeeID != employeeID {
			continue
		}
		if key.workDay.Before(from) || key.workDay.After(to) {
			continue
		}
		out = append(out, copyRecord(record))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[j].WorkDay.Before(out[i].WorkDay)
	})
	return out, nil
}

func copyRecord(record *attendance.Record) *attendance.Record {
	c := *record
	if record.CheckOutTime != nil {
		checkOut := *record.CheckOutTime
		c.CheckOutTime = &checkOut
	}
	return &c
}
