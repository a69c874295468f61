package utils

import (
	"fmt"
	"time"
)

// Date layouts accepted for price-table input. The original product's data
// files use mm-dd-yyyy; downloaded data uses ISO yyyy-mm-dd.
const (
	LayoutISO = "2006-01-02"
	LayoutUS  = "01-02-2006"
)

// ParseFlexibleDate parses a date in either yyyy-mm-dd or mm-dd-yyyy form.
// The result is a pure date (midnight UTC).
func ParseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(LayoutISO, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LayoutUS, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (expected yyyy-mm-dd or mm-dd-yyyy)", s)
}

// FormatDate formats a time as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(LayoutISO)
}

// DateOnly truncates a time to midnight UTC, keeping only the calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekEnd returns the canonical week-ending date (the ISO-week Sunday) of
// the week containing t. Weeks run Monday through Sunday, so every trading
// day of one calendar week maps to the same week-end date.
func WeekEnd(t time.Time) time.Time {
	d := DateOnly(t)
	wd := int(d.Weekday()) // Sunday = 0
	if wd == 0 {
		return d
	}
	return d.AddDate(0, 0, 7-wd)
}

// QuarterLabel returns the calendar-quarter label of t, e.g. "Q3 2024".
func QuarterLabel(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d %d", q, t.Year())
}
