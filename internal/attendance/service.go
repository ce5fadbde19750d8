package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"checkin/internal/audit"
	"checkin/internal/platform/metrics"
	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// Business outcomes of the daily cycle. These are values, not generic
// errors: callers branch on them and the transport layer maps them to 409.
var (
	ErrAlreadyCheckedIn  = dErrors.New(dErrors.CodeConflict, "already checked in for this work day")
	ErrAlreadyCheckedOut = dErrors.New(dErrors.CodeConflict, "already checked out for this work day")
	ErrNotCheckedIn      = dErrors.New(dErrors.CodeConflict, "not checked in for this work day")
)

var tracer = otel.Tracer("attendance")

// RecordStore is the persistence dependency of the ledger.
type RecordStore interface {
	Insert(ctx context.Context, record *Record) error
	SetCheckOut(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay, at time.Time) (*Record, error)
	FindByDay(ctx context.Context, employeeID id.EmployeeID, workDay id.WorkDay) (*Record, error)
	ListRange(ctx context.Context, employeeID id.EmployeeID, from, to id.WorkDay) ([]*Record, error)
}

// Service is the attendance ledger: the only component that mutates records.
// It derives the work-day from the request-scoped now in one configured
// timezone for everyone, and it delegates all mutual exclusion to the store.
type Service struct {
	store    RecordStore
	location *time.Location
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(store RecordStore, location *time.Location, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		location: location,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// CheckIn opens the employee's cycle for today. Exactly one concurrent
// attempt per (employee, work-day) succeeds; the rest get
// ErrAlreadyCheckedIn.
func (s *Service) CheckIn(ctx context.Context, employeeID id.EmployeeID) (*Record, error) {
	ctx, span := tracer.Start(ctx, "attendance.CheckIn")
	defer span.End()

	now := requestcontext.Now(ctx)
	workDay := id.WorkDayOf(now, s.location)
	span.SetAttributes(attribute.String("attendance.work_day", workDay.String()))

	record := &Record{
		EmployeeID:  employeeID,
		WorkDay:     workDay,
		CheckInTime: now,
	}
	err := s.store.Insert(ctx, record)
	if errors.Is(err, sentinel.ErrConflict) {
		s.metrics.CheckInConflict.Inc()
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist check-in")
	}

	s.metrics.CheckIns.Inc()
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionCheckedIn,
		EmployeeID: employeeID,
		Detail:     workDay.String(),
	})
	return record, nil
}

// CheckOut completes today's cycle. The check-out instant is stored as
// given, even when the clock reads earlier than the stored check-in; ordering
// is not validated here.
func (s *Service) CheckOut(ctx context.Context, employeeID id.EmployeeID) (*Record, error) {
	ctx, span := tracer.Start(ctx, "attendance.CheckOut")
	defer span.End()

	now := requestcontext.Now(ctx)
	workDay := id.WorkDayOf(now, s.location)
	span.SetAttributes(attribute.String("attendance.work_day", workDay.String()))

	record, err := s.store.SetCheckOut(ctx, employeeID, workDay, now)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, ErrNotCheckedIn
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return nil, ErrAlreadyCheckedOut
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist check-out")
	}

	s.metrics.CheckOuts.Inc()
	s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionCheckedOut,
		EmployeeID: employeeID,
		Detail:     workDay.String(),
	})
	return record, nil
}
