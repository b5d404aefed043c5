package models

import (
	"fmt"
	"strconv"
	"strings"
)

// CalendarDate is a (year, month, day) triple. No calendar validation is
// performed: 2023-02-31 is a legal value and is left for the content service
// to reject.
type CalendarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// ParseCalendarDate parses "YYYY-MM-DD" (leading zeros optional) into a
// CalendarDate. Only the numeric shape is checked.
func ParseCalendarDate(s string) (CalendarDate, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return CalendarDate{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return CalendarDate{}, fmt.Errorf("invalid date %q: %q is not a number", s, p)
		}
		nums[i] = n
	}
	return CalendarDate{Year: nums[0], Month: nums[1], Day: nums[2]}, nil
}

// String formats the date as the content service expects it, YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is chronologically before other. The comparison is
// field-wise so out-of-range months or days are never normalized.
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// WithYear returns a copy of d with the year replaced.
func (d CalendarDate) WithYear(year int) CalendarDate {
	d.Year = year
	return d
}

// Credential is an opaque access token for the content service.
type Credential string

// Masked returns a loggable prefix of the credential.
func (c Credential) Masked() string {
	if len(c) <= 5 {
		return "***"
	}
	return string(c[:5]) + "..."
}
