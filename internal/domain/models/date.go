package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// InspectionDateLayout is the layout of an inspection's "data" field.
	InspectionDateLayout = "02/01/2006"
	// NextVisitLayout is the layout of an inspection's "proxima_visita" field.
	NextVisitLayout = "02/01/2006 15:04"
	// ISODateLayout is used on the wire for calendar dates.
	ISODateLayout = "2006-01-02"
)

// Date is a calendar day without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the provided components, so NewDate(2024, 2, 30) is 1 March 2024.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// ParseInspectionDate parses a DD/MM/YYYY inspection date.
func ParseInspectionDate(value string) (Date, error) {
	t, err := time.Parse(InspectionDateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("parse inspection date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// ParseNextVisit parses a DD/MM/YYYY HH:mm instant in loc.
func ParseNextVisit(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(NextVisitLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse next visit %q: %w", value, err)
	}
	return t, nil
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes YYYY-MM-DD; an empty value yields the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
