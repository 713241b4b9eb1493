package instruments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/meenmo/multicurve/calendar"
)

// Tenor is a market tenor string such as "1W", "3M", "18M" or "10Y".
type Tenor string

// ParseTenor validates a tenor string.
func ParseTenor(s string) (Tenor, error) {
	t := Tenor(s)
	if _, _, err := t.split(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Tenor) split() (n int, unit byte, err error) {
	s := string(t)
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	unit = s[len(s)-1]
	switch unit {
	case 'D', 'W', 'M', 'Y':
	default:
		return 0, 0, fmt.Errorf("ParseTenor: invalid tenor unit in %q", s)
	}
	n, err = strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	return n, unit, nil
}

func (t Tenor) String() string { return string(t) }

// Months returns the tenor in months. Day and week tenors have no month
// representation and report false.
func (t Tenor) Months() (int, bool) {
	n, unit, err := t.split()
	if err != nil {
		return 0, false
	}
	switch unit {
	case 'M':
		return n, true
	case 'Y':
		return 12 * n, true
	}
	return 0, false
}

// Days returns the tenor in calendar days for day and week tenors.
func (t Tenor) Days() (int, bool) {
	n, unit, err := t.split()
	if err != nil {
		return 0, false
	}
	switch unit {
	case 'D':
		return n, true
	case 'W':
		return 7 * n, true
	}
	return 0, false
}

// AddTo applies the tenor to a date. Month and year tenors roll on month
// anchors with modified following; day and week tenors add calendar days
// and adjust following.
func (t Tenor) AddTo(cal calendar.CalendarID, from time.Time) time.Time {
	if months, ok := t.Months(); ok {
		return calendar.AddMonthsWithRoll(cal, from, months)
	}
	days, _ := t.Days()
	return calendar.AdjustFollowing(cal, from.AddDate(0, 0, days))
}
