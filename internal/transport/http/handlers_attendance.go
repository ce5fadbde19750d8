package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"checkin/internal/attendance"
	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
	"checkin/pkg/platform/httputil"
	"checkin/pkg/requestcontext"
)

// Ledger is the mutating surface of the attendance cycle.
type Ledger interface {
	CheckIn(ctx context.Context, employeeID id.EmployeeID) (*attendance.Record, error)
	CheckOut(ctx context.Context, employeeID id.EmployeeID) (*attendance.Record, error)
}

// StatusReader is the read surface.
type StatusReader interface {
	Today(ctx context.Context, employeeID id.EmployeeID) (attendance.DayStatus, error)
	History(ctx context.Context, employeeID id.EmployeeID, windowDays int) ([]attendance.DayStatus, error)
}

type AttendanceHandler struct {
	ledger Ledger
	status StatusReader
	logger *slog.Logger
}

func NewAttendanceHandler(ledger Ledger, status StatusReader, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{ledger: ledger, status: status, logger: logger}
}

type recordPayload struct {
	WorkDay      id.WorkDay `json:"work_day"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
}

type statusPayload struct {
	WorkDay      id.WorkDay        `json:"work_day"`
	Status       attendance.Status `json:"status"`
	CheckInTime  *time.Time        `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time        `json:"check_out_time,omitempty"`
}

func (h *AttendanceHandler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.ledger.CheckIn(ctx, requestcontext.EmployeeID(ctx))
	if err != nil {
		h.writeLedgerError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordPayload(record))
}

func (h *AttendanceHandler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.ledger.CheckOut(ctx, requestcontext.EmployeeID(ctx))
	if err != nil {
		h.writeLedgerError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordPayload(record))
}

func (h *AttendanceHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.status.Today(ctx, requestcontext.EmployeeID(ctx))
	if err != nil {
		h.writeLedgerError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusPayload(status))
}

// handleHistory serves GET /attendance/history?days=N. Out-of-range windows
// are clamped by the service, but a non-numeric value is a caller bug.
func (h *AttendanceHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	windowDays := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "days must be an integer"))
			return
		}
		windowDays = parsed
	}

	history, err := h.status.History(ctx, requestcontext.EmployeeID(ctx), windowDays)
	if err != nil {
		h.writeLedgerError(ctx, w, err)
		return
	}

	payload := make([]statusPayload, 0, len(history))
	for _, day := range history {
		payload = append(payload, toStatusPayload(day))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"days": payload})
}

func (h *AttendanceHandler) writeLedgerError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "attendance operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func toRecordPayload(record *attendance.Record) recordPayload {
	payload := recordPayload{
		WorkDay:     record.WorkDay,
		CheckInTime: record.CheckInTime,
	}
	if record.CheckOutTime != nil {
		checkOut := *record.CheckOutTime
		payload.CheckOutTime = &checkOut
	}
	return payload
}

func toStatusPayload(status attendance.DayStatus) statusPayload {
	return statusPayload{
		WorkDay:      status.WorkDay,
		Status:       status.Status,
		CheckInTime:  status.CheckInTime,
		CheckOutTime: status.CheckOutTime,
	}
}
