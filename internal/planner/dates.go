package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and bucket-key form of a calendar day.
	DateLayout = "2006-01-02"
	// ClockLayout is the form of a todo's due time.
	ClockLayout = "15:04"

	labelLayout = "Monday, January 2, 2006"
)

// ErrDueDateInPast is returned when a submitted due date lies before today.
var ErrDueDateInPast = errors.New("cannot set a due date in the past")

// ParseDueDate reads a due date as either YYYY-MM-DD or an RFC 3339
// timestamp and returns midnight of that calendar day in loc.
func ParseDueDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}
	if day, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", raw)
	}
	return startOfDay(ts.In(loc)), nil
}

// ParseClock validates an HH:MM due time and returns its hour and minute.
func ParseClock(raw string) (hour, minute int, err error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid due time %q, expected HH:MM", raw)
	}
	return t.Hour(), t.Minute(), nil
}

// Combine returns the instant at which a todo falls due: the calendar
// day of date in loc at the given clock time. An empty or malformed
// clock means start of day.
func Combine(date time.Time, clock string, loc *time.Location) time.Time {
	day := startOfDay(date.In(loc))
	if clock == "" {
		return day
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

func hasClock(clock string) bool {
	if clock == "" {
		return false
	}
	_, _, err := ParseClock(clock)
	return err == nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
