package model

import (
	"errors"
	"fmt"
	"time"
)

// MonthLayout is the textual form of a Month key.
const MonthLayout = "2006-01"

// DateLayout is the textual form of a calendar date.
const DateLayout = "2006-01-02"

// Date and month validation errors.
var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidDate  = errors.New("invalid date")
)

// Month identifies a budget month. The zero value is not a valid month.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth builds a Month, rejecting out of range values.
func NewMonth(year int, month time.Month) (Month, error) {
	if month < time.January || month > time.December {
		return Month{}, fmt.Errorf("%w: month %d out of range", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: year %d out of range", ErrInvalidMonth, year)
	}
	return Month{Year: year, Month: month}, nil
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseMonth is ParseMonth for constants and tests.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month containing now in local time.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// String returns the YYYY-MM key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Valid reports whether m names a real month.
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December && m.Year >= 1 && m.Year <= 9999
}

// Prev returns the preceding month. January wraps to December of the prior year.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month. December wraps to January of the next year.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Add moves m by n months, n may be negative.
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	return Month{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// Compare returns -1, 0 or +1 ordering m against o.
func (m Month) Compare(o Month) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	default:
		return 0
	}
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	return m.Compare(o) < 0
}

// Start is the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last day of the month (inclusive).
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Contains reports whether the calendar date of t falls inside m.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}
