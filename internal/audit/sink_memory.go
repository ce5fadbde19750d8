package audit

import (
	"context"
	"sync"

	"checkin/pkg/domain"
)

// MemorySink keeps events in memory. Test double and default sink when no
// Kafka brokers are configured.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything appended so far, in order.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ListByEmployee filters the snapshot down to one employee's trail.
func (s *MemorySink) ListByEmployee(id domain.EmployeeID) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.EmployeeID == id {
			out = append(out, e)
		}
	}
	return out
}
