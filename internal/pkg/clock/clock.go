// Package clock wraps "now", calendar-day boundaries in a reference timezone
// and interval arithmetic between instants.
package clock

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var ErrInvalidTime = errors.New("invalid date or time value")

// Clock is the source of "now" and of the reference timezone used for calendar days.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// New returns a Clock backed by the system time. A nil location means UTC.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c systemClock) Location() *time.Location {
	return c.loc
}

type fixedClock struct {
	now time.Time
	loc *time.Location
}

// Fixed returns a Clock that always reports now.
func Fixed(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return fixedClock{now: now, loc: loc}
}

func (c fixedClock) Now() time.Time {
	return c.now.In(c.loc)
}

func (c fixedClock) Location() *time.Location {
	return c.loc
}

// Window is an inclusive instant range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartOfDay returns 00:00:00.000 of the calendar day t belongs to in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of the calendar day t belongs to in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DayWindow returns the [start, end] window of the calendar day containing t.
func DayWindow(t time.Time, loc *time.Location) Window {
	return Window{Start: StartOfDay(t, loc), End: EndOfDay(t, loc)}
}

// RangeWindow spans from the start of from's day to the end of to's day.
func RangeWindow(from, to time.Time, loc *time.Location) Window {
	return Window{Start: StartOfDay(from, loc), End: EndOfDay(to, loc)}
}

// ParseDate parses a calendar day. Date-only values are read in loc; full
// timestamps are accepted too and keep their own offset.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	return ParseInstant(s, loc)
}

// ParseInstant parses an ISO-8601 instant. Values without an offset are read in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04", DateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTime
}

// DiffHours returns the fractional hours from start to end, millisecond precision.
func DiffHours(start, end time.Time) decimal.Decimal {
	ms := end.Sub(start).Milliseconds()
	return decimal.NewFromInt(ms).Div(decimal.NewFromInt(int64(time.Hour / time.Millisecond)))
}
