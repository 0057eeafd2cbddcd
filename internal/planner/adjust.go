package planner

import "time"

// Adjustment is the outcome of checking a submitted due date and time.
type Adjustment struct {
	Date        time.Time
	Time        string
	WasAdjusted bool
}

// Adjust moves a due moment that has already passed today to the same
// time tomorrow. Any other date is returned unchanged, including past
// days; callers reject those with CheckDue.
func Adjust(date time.Time, clock string, now time.Time) Adjustment {
	loc := now.Location()
	day := startOfDay(date.In(loc))
	due := Combine(day, clock, loc)
	if due.Before(now) && sameDay(day, now) {
		return Adjustment{Date: day.AddDate(0, 0, 1), Time: clock, WasAdjusted: true}
	}
	return Adjustment{Date: day, Time: clock}
}

// CheckDue validates a submitted due date. A day before today is an
// error; a passed time today is adjusted. A date without a time is an
// all-day todo and is never moved.
func CheckDue(date time.Time, clock string, now time.Time) (Adjustment, error) {
	day := startOfDay(date.In(now.Location()))
	if day.Before(startOfDay(now)) {
		return Adjustment{}, ErrDueDateInPast
	}
	if !hasClock(clock) {
		return Adjustment{Date: day, Time: clock}, nil
	}
	return Adjust(day, clock, now), nil
}
