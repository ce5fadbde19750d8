package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"checkin/pkg/requestcontext"
)

// Sink is where drained events end up. Implementations: MemorySink for tests
// and single-node deployments, KafkaSink for shipping to a log pipeline.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events onto a bounded channel drained
// by the Worker. Emit fills in the envelope (id, timestamp, request
// correlation) from the context so call sites stay one-liners.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the receive side for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Emit enqueues an event. Best-effort: when the buffer is full the event is
// dropped and logged rather than blocking the request path.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event",
			"action", event.Action,
			"event_id", event.ID,
		)
	}
}

// Drain waits until the inbox is empty or the timeout elapses. Used on
// shutdown so in-flight events reach the sink.
func (p *Publisher) Drain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for len(p.inbox) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}
