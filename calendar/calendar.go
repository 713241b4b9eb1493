package calendar

import (
	"time"

	"github.com/meenmo/multicurve/utils"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// TARGET is the eurozone TARGET2 settlement calendar.
	TARGET CalendarID = "TARGET"
	// USNY is the New York bank calendar.
	USNY CalendarID = "USNY"
	// GBLO is the London bank calendar.
	GBLO CalendarID = "GBLO"
	// NONE treats every calendar day, weekends included, as a business day.
	NONE CalendarID = "NONE"
)

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		_, ok := targetHolidays[t.Format(utils.DateLayout)]
		return ok
	case USNY:
		return isUSNYHoliday(t)
	case GBLO:
		return isGBLOHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets. The NONE calendar has no
// weekends and no holidays.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NONE {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// AddMonthsWithRoll adds months EDATE style, applies backward EOM adjustment
// when the anchor sits on the last calendar day of its month, then Modified
// Following.
func AddMonthsWithRoll(cal CalendarID, t time.Time, months int) time.Time {
	target := utils.AddMonth(t, months)
	if t.Day() >= daysInMonth(t.Year(), t.Month()) {
		target = time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return Adjust(cal, target)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	// Move to first day of next month
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	// Go back one day and find the prior business day
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
