package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date format accepted from callers and used
	// in export file names.
	DateLayout = "2006-01-02"

	// queryLayout is the instant format sent as starttime/endtime.
	queryLayout = "2006-01-02T15:04:05"
)

// DateRange is an inclusive range of whole UTC calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncated to UTC midnight.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings. Empty values fall back to the
// default range (yesterday through today). The result is validated.
func ParseDateRange(start, end string) (DateRange, error) {
	def := DefaultDateRange()
	r := def

	if s := strings.TrimSpace(start); s != "" {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidRange, s)
		}
		r.Start = t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidRange, s)
		}
		r.End = t
	}

	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// DefaultDateRange covers yesterday and today in UTC.
func DefaultDateRange() DateRange {
	today := truncateDay(clock.Now())
	return DateRange{Start: today.AddDate(0, 0, -1), End: today}
}

// Validate rejects ranges whose start date is after the end date.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start date must be before or equal to end date", ErrInvalidRange)
	}
	return nil
}

// StartTime is the first instant of the range, formatted for the event API.
func (r DateRange) StartTime() string {
	return r.Start.Format(queryLayout)
}

// EndTime is the last whole second of the range, formatted for the event API.
func (r DateRange) EndTime() string {
	return r.End.Add(24*time.Hour - time.Second).Format(queryLayout)
}

// Closed reports whether the range ended before the given day, meaning its
// results can no longer change.
func (r DateRange) Closed(now time.Time) bool {
	return r.End.Before(truncateDay(now))
}

// FileName returns "earthquakes_<start>_<end>.<ext>".
func (r DateRange) FileName(ext string) string {
	return fmt.Sprintf("earthquakes_%s_%s.%s", r.Start.Format(DateLayout), r.End.Format(DateLayout), ext)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + "/" + r.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
