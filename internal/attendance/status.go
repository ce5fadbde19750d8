package attendance

import (
	"context"
	"errors"
	"time"

	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/sentinel"
	"checkin/pkg/requestcontext"
)

// History window bounds. Requests outside the range are clamped, not
// rejected; zero means "use the default".
const (
	HistoryDaysDefault = 14
	HistoryDaysMin     = 1
	HistoryDaysMax     = 90
)

// StatusService is the read surface of the ledger. Pure reads, no side
// effects; it exists so callers depend on a contract rather than on ledger
// internals.
type StatusService struct {
	store    RecordStore
	location *time.Location
}

func NewStatusService(store RecordStore, location *time.Location) *StatusService {
	return &StatusService{store: store, location: location}
}

// Today reports the state of the employee's cycle for the current work-day.
func (s *StatusService) Today(ctx context.Context, employeeID id.EmployeeID) (DayStatus, error) {
	workDay := id.WorkDayOf(requestcontext.Now(ctx), s.location)

	record, err := s.store.FindByDay(ctx, employeeID, workDay)
	if errors.Is(err, sentinel.ErrNotFound) {
		return DayStatusOf(workDay, nil), nil
	}
	if err != nil {
		return DayStatus{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load attendance status")
	}
	return DayStatusOf(workDay, record), nil
}

// History returns the employee's records for the window ending today,
// newest work-day first. The result is sparse: days with no check-in are
// simply absent.
func (s *StatusService) History(ctx context.Context, employeeID id.EmployeeID, windowDays int) ([]DayStatus, error) {
	windowDays = clampWindow(windowDays)

	today := id.WorkDayOf(requestcontext.Now(ctx), s.location)
	from := today.AddDays(-(windowDays - 1))

	records, err := s.store.ListRange(ctx, employeeID, from, today)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load attendance history")
	}

	out := make([]DayStatus, 0, len(records))
	for _, record := range records {
		out = append(out, DayStatusOf(record.WorkDay, record))
	}
	return out, nil
}

func clampWindow(windowDays int) int {
	switch {
	case windowDays == 0:
		return HistoryDaysDefault
	case windowDays < HistoryDaysMin:
		return HistoryDaysMin
	case windowDays > HistoryDaysMax:
		return HistoryDaysMax
	}
	return windowDays
}
