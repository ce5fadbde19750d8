package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher inbox into a Sink. Sink failures are logged
// and the worker moves on; audit delivery never takes down the service.
type Worker struct {
	inbox  <-chan Event
	sink   Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, sink: sink, logger: logger}
}

// Run blocks until ctx is cancelled, then drains whatever is left in the
// inbox before returning.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		case <-ctx.Done():
			for {
				select {
				case event := <-w.inbox:
					w.append(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.Error("audit sink append failed",
			"action", event.Action,
			"event_id", event.ID,
			"error", err,
		)
	}
}
