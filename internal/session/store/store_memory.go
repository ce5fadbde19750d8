package store

import (
	"context"
	"sync"
	"time"

	"checkin/internal/session"
	id "checkin/pkg/domain"
	"checkin/pkg/platform/sentinel"
)

// InMemorySessionStore is the development and test implementation. Expired
// sessions are not reaped; callers decide liveness from the record itself.
type InMemorySessionStore struct {
	mu         sync.RWMutex
	sessions   map[id.SessionID]*session.Session
	byEmployee map[id.EmployeeID][]id.SessionID
}

func NewMemory() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions:   make(map[id.SessionID]*session.Session),
		byEmployee: make(map[id.EmployeeID][]id.SessionID),
	}
}

func (s *InMemorySessionStore) Create(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *sess
	s.sessions[stored.ID] = &stored
	s.byEmployee[stored.EmployeeID] = append(s.byEmployee[stored.EmployeeID], stored.ID)
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySession(sess), nil
}

func (s *InMemorySessionStore) Revoke(_ context.Context, sessionID id.SessionID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sess.Revoked() {
		return sentinel.ErrAlreadyUsed
	}
	revokedAt := at
	sess.RevokedAt = &revokedAt
	return nil
}

func (s *InMemorySessionStore) ListByEmployee(_ context.Context, employeeID id.EmployeeID) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEmployee[employeeID]
	out := make([]*session.Session, 0, len(ids))
	for _, sessionID := range ids {
		out = append(out, copySession(s.sessions[sessionID]))
	}
	return out, nil
}

func copySession(sess *session.Session) *session.Session {
	c := *sess
	if sess.RevokedAt != nil {
		revokedAt := *sess.RevokedAt
		c.RevokedAt = &revokedAt
	}
	return &c
}
