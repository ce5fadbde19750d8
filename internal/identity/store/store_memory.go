package store

import (
	"context"
	"sync"
	"time"

	"checkin/internal/identity"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

// InMemoryEmployeeStore keeps the development and test configuration
// dependency-free. One mutex serializes Upsert, which is what makes the
// insert-or-update atomic from the caller's perspective.
type InMemoryEmployeeStore struct {
	mu        sync.RWMutex
	byID      map[id.EmployeeID]*identity.Employee
	bySubject map[string]id.EmployeeID
	byEmail   map[string]id.EmployeeID
}

func New() *InMemoryEmployeeStore {
	return &InMemoryEmployeeStore{
		byID:      make(map[id.EmployeeID]*identity.Employee),
		bySubject: make(map[string]id.EmployeeID),
		byEmail:   make(map[string]id.EmployeeID),
	}
}

func (s *InMemoryEmployeeStore) Upsert(_ context.Context, candidate *identity.Employee) (*identity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existingID, ok := s.bySubject[candidate.SubjectID]
	if !ok {
		existingID, ok = s.byEmail[candidate.Email]
	}

	now := time.Now().UTC()

	if ok {
		current := s.byID[existingID]
		delete(s.bySubject, current.SubjectID)
		delete(s.byEmail, current.Email)

		updated := *current
		updated.SubjectID = candidate.SubjectID
		updated.Email = candidate.Email
		updated.DisplayName = candidate.DisplayName
		updated.AvatarURL = candidate.AvatarURL
		updated.UpdatedAt = now

		s.byID[updated.ID] = &updated
		s.bySubject[updated.SubjectID] = updated.ID
		s.byEmail[updated.Email] = updated.ID
		return copyOf(&updated), nil
	}

	created := *candidate
	if created.ID.IsNil() {
		created.ID = id.NewEmployeeID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	s.byID[created.ID] = &created
	s.bySubject[created.SubjectID] = created.ID
	s.byEmail[created.Email] = created.ID
	return copyOf(&created), nil
}

func (s *InMemoryEmployeeStore) FindByID(_ context.Context, employeeID id.EmployeeID) (*identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if employee, ok := s.byID[employeeID]; ok {
		return copyOf(employee), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryEmployeeStore) FindBySubjectID(_ context.Context, subjectID string) (*identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if employeeID, ok := s.bySubject[subjectID]; ok {
		return copyOf(s.byID[employeeID]), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryEmployeeStore) FindByEmail(_ context.Context, address string) (*identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if employeeID, ok := s.byEmail[address]; ok {
		return copyOf(s.byID[employeeID]), nil
	}
	return nil, sentinel.ErrNotFound
}

func copyOf(e *identity.Employee) *identity.Employee {
	c := *e
	return &c
}
