package analytics

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Period constants for window queries
const (
	PeriodToday      = "today"
	PeriodYesterday  = "yesterday"
	PeriodLast7Days  = "last_7_days"
	PeriodLast30Days = "last_30_days"
)

// ErrInvalidWindow is returned when a date window cannot be aggregated
var ErrInvalidWindow = errors.New("invalid date window")

// MaxWindowDays bounds the days a single report may cover
const MaxWindowDays = 366

const secondsPerDay = 24 * 60 * 60

// Window is an inclusive range of UTC calendar days
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from two instants, truncated to UTC calendar days
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidWindow)
	}
	w := Window{Start: day(start), End: day(end)}
	if w.Start.After(w.End) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidWindow, w.Start.Format(dateLayout), w.End.Format(dateLayout))
	}
	if days := w.Days(); days > MaxWindowDays {
		return Window{}, fmt.Errorf("%w: %d days exceeds the %d day maximum", ErrInvalidWindow, days, MaxWindowDays)
	}
	return w, nil
}

// ParseWindow builds a window from two YYYY-MM-DD dates
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start date %q: %v", ErrInvalidWindow, start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end date %q: %v", ErrInvalidWindow, end, err)
	}
	return NewWindow(s, e)
}

// ResolvePeriod converts a named period into a window ending relative to now
func ResolvePeriod(period string, now time.Time) (Window, error) {
	today := day(now)
	switch period {
	case PeriodToday:
		return Window{Start: today, End: today}, nil
	case PeriodYesterday:
		yesterday := today.AddDate(0, 0, -1)
		return Window{Start: yesterday, End: yesterday}, nil
	case PeriodLast7Days:
		return Window{Start: today.AddDate(0, 0, -6), End: today}, nil
	case PeriodLast30Days:
		return Window{Start: today.AddDate(0, 0, -29), End: today}, nil
	default:
		return Window{}, fmt.Errorf("%w: unknown period %q", ErrInvalidWindow, period)
	}
}

// Days returns the number of calendar days in the window, both ends included
func (w Window) Days() int {
	return int((w.End.Unix()-w.Start.Unix())/secondsPerDay) + 1
}

// Dates returns every day of the window as YYYY-MM-DD, ascending
func (w Window) Dates() []string {
	dates := make([]string, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

// Contains reports whether t falls on a day inside the window
func (w Window) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Bounds returns the half-open instant range [from, to) covering the window
func (w Window) Bounds() (from, to time.Time) {
	return w.Start, w.End.AddDate(0, 0, 1)
}

// StartDate returns the first day as YYYY-MM-DD
func (w Window) StartDate() string { return w.Start.Format(dateLayout) }

// EndDate returns the last day as YYYY-MM-DD
func (w Window) EndDate() string { return w.End.Format(dateLayout) }

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey returns the YYYY-MM-DD bucket key for t
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
