// Package clock converts instants to calendar dates in an explicit time zone.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for day buckets and session dates
const DateLayout = "2006-01-02"

// Clock returns the current time. Services take a Clock so tests can pin "now".
type Clock func() time.Time

// System is the wall clock
var System Clock = time.Now

// DateKey returns the calendar date of t in loc
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// StartOfDay returns midnight of t's date in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns Monday midnight of t's week in loc
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Month identifies a calendar month
type Month struct {
	Year  int
	Month time.Month
}

// String formats m as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthOf returns the month containing t in loc
func MonthOf(t time.Time, loc *time.Location) Month {
	lt := t.In(loc)
	return Month{Year: lt.Year(), Month: lt.Month()}
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Add returns the month n months after m
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Range returns the inclusive bounds of m in loc: the first instant of the
// month and the last nanosecond before the next one.
func (m Month) Range(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Days returns the number of days in m
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate parses a YYYY-MM-DD date as midnight in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NSE cash session, local exchange time
const (
	marketOpenMinute  = 9*60 + 15
	marketCloseMinute = 15*60 + 30
)

// IsMarketOpen reports whether t falls in the weekday trading session in loc
func IsMarketOpen(t time.Time, loc *time.Location) bool {
	lt := t.In(loc)
	if lt.Weekday() == time.Saturday || lt.Weekday() == time.Sunday {
		return false
	}
	minute := lt.Hour()*60 + lt.Minute()
	return minute >= marketOpenMinute && minute <= marketCloseMinute
}
