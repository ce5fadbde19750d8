package domain

import (
	"fmt"
	"time"
)

// workDayLayout is the canonical wire and storage format for work days.
const workDayLayout = "2006-01-02"

// WorkDay is the calendar date key under which one attendance cycle is
// tracked. The whole system derives work days in a single configured time
// zone; there is no per-employee zone handling. Values are comparable and
// safe as map keys.
type WorkDay struct {
	Year  int
	Month time.Month
	Day   int
}

// WorkDayOf derives the work day for an instant in the given location.
func WorkDayOf(t time.Time, loc *time.Location) WorkDay {
	y, m, d := t.In(loc).Date()
	return WorkDay{Year: y, Month: m, Day: d}
}

// ParseWorkDay parses a YYYY-MM-DD string.
func ParseWorkDay(s string) (WorkDay, error) {
	t, err := time.Parse(workDayLayout, s)
	if err != nil {
		return WorkDay{}, fmt.Errorf("parse work day %q: %w", s, err)
	}
	y, m, d := t.Date()
	return WorkDay{Year: y, Month: m, Day: d}, nil
}

func (w WorkDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", w.Year, w.Month, w.Day)
}

// Time returns midnight of the work day in the given location.
func (w WorkDay) Time(loc *time.Location) time.Time {
	return time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the work day shifted by n calendar days (n may be negative).
func (w WorkDay) AddDays(n int) WorkDay {
	t := time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	y, m, d := t.Date()
	return WorkDay{Year: y, Month: m, Day: d}
}

// Before reports whether w is strictly earlier than other.
func (w WorkDay) Before(other WorkDay) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	if w.Month != other.Month {
		return w.Month < other.Month
	}
	return w.Day < other.Day
}

// After reports whether w is strictly later than other.
func (w WorkDay) After(other WorkDay) bool {
	return other.Before(w)
}

// IsZero reports whether w is the zero value.
func (w WorkDay) IsZero() bool {
	return w == WorkDay{}
}

// MarshalJSON renders the work day as a YYYY-MM-DD string.
func (w WorkDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON parses a YYYY-MM-DD string.
func (w *WorkDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("work day must be a JSON string")
	}
	parsed, err := ParseWorkDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
