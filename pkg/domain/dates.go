package domain

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component. It marshals to the
// YYYY-MM-DD wire format used throughout the stored buckets.
type Date struct {
	t time.Time
}

// NewDate builds a Date from a year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string { return d.t.Format(dateLayout) }

// Time returns the date as a UTC midnight timestamp.
func (d Date) Time() time.Time { return d.t }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of month.
func (d Date) Day() int { return d.t.Day() }

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the whole days elapsed from other to d. Negative when
// other is in the future relative to d.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether both dates denote the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// MonthKey returns the YYYY-MM budget key for the date.
func (d Date) MonthKey() string { return d.t.Format("2006-01") }

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted YYYY-MM-DD string. Empty strings and null
// decode to the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
