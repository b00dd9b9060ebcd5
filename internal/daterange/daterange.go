// Package daterange parses compact date offset windows such as "-3M:2M" and
// tests whether a date falls inside one relative to an origin date.
//
// Each side of a window is an integer followed by an optional unit:
// M (months), Y (years) or d (days). A missing unit means days and an empty
// side means zero. The two sides are ordered by their raw numbers, ignoring
// units, so "-3M:10d" spans from three months before the origin to ten days
// after it. Existing signed configurations depend on that ordering.
package daterange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unit is the calendar unit of an offset.
type Unit byte

const (
	Days   Unit = 'd'
	Months Unit = 'M'
	Years  Unit = 'Y'
)

// DateLayout is the only accepted date shape: eight digits, yyyyMMdd.
const DateLayout = "20060102"

var (
	offsetPattern = regexp.MustCompile(`^([+-]?\d+)([dMY]?)$`)
	datePattern   = regexp.MustCompile(`^\d{8}$`)
)

// Offset is a signed amount of a calendar unit.
type Offset struct {
	Amount int
	Unit   Unit
}

// String renders the offset in window syntax.
func (o Offset) String() string {
	return fmt.Sprintf("%d%c", o.Amount, o.Unit)
}

// From applies the offset to t. Month and year arithmetic clamps to the last
// day of the target month, so Jan 31 + 1M is the last day of February.
func (o Offset) From(t time.Time) time.Time {
	switch o.Unit {
	case Months:
		return AddMonths(t, o.Amount)
	case Years:
		return AddMonths(t, o.Amount*12)
	default:
		return t.AddDate(0, 0, o.Amount)
	}
}

// Window is an inclusive range of offsets around an origin date.
type Window struct {
	Start Offset
	End   Offset
}

// String renders the window in its source syntax.
func (w Window) String() string {
	return w.Start.String() + ":" + w.End.String()
}

// Parse reads "<left>:<right>".
func Parse(s string) (Window, error) {
	left, right, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(right, ":") {
		return Window{}, fmt.Errorf("date window %q must have the form <left>:<right>", s)
	}

	start, err := parseOffset(left)
	if err != nil {
		return Window{}, fmt.Errorf("date window %q: %w", s, err)
	}
	end, err := parseOffset(right)
	if err != nil {
		return Window{}, fmt.Errorf("date window %q: %w", s, err)
	}

	if end.Amount < start.Amount {
		start, end = end, start
	}
	return Window{Start: start, End: end}, nil
}

func parseOffset(s string) (Offset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Offset{Amount: 0, Unit: Days}, nil
	}
	m := offsetPattern.FindStringSubmatch(s)
	if m == nil {
		return Offset{}, fmt.Errorf("invalid offset %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Offset{}, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	unit := Days
	if m[2] != "" {
		unit = Unit(m[2][0])
	}
	return Offset{Amount: n, Unit: unit}, nil
}

// Contains reports whether date lies within the window around origin.
// Only the calendar day of each time is compared.
func (w Window) Contains(origin, date time.Time) bool {
	day := truncate(date)
	base := truncate(origin)
	lo := w.Start.From(base)
	hi := w.End.From(base)
	return !day.Before(lo) && !day.After(hi)
}

// ParseDate parses an eight digit yyyyMMdd date. Calendar-invalid dates such
// as 20230230 are rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("date %q must be eight digits yyyyMMdd", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return t, nil
}

// AddMonths adds n months to t, clamping the day to the end of the target
// month instead of overflowing into the next one.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
