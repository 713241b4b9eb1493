package calendar

import (
	"time"

	"github.com/meenmo/multicurve/utils"
)

// Western Easter Sundays. Good Friday and Easter Monday derive from this
// table; dates outside the covered years fall back to weekend-only
// adjustment.
var easterSunday = map[int]time.Time{
	2024: utils.MustDate("2024-03-31"),
	2025: utils.MustDate("2025-04-20"),
	2026: utils.MustDate("2026-04-05"),
	2027: utils.MustDate("2027-03-28"),
	2028: utils.MustDate("2028-04-16"),
	2029: utils.MustDate("2029-04-01"),
	2030: utils.MustDate("2030-04-21"),
	2031: utils.MustDate("2031-04-13"),
	2032: utils.MustDate("2032-03-28"),
	2033: utils.MustDate("2033-04-17"),
	2034: utils.MustDate("2034-04-09"),
	2035: utils.MustDate("2035-03-25"),
}

var (
	targetHolidays = map[string]struct{}{}
	usnyHolidays   = map[string]struct{}{}
	gbloHolidays   = map[string]struct{}{}
)

func init() {
	for year, easter := range easterSunday {
		buildTargetYear(year, easter)
		buildUSNYYear(year)
		buildGBLOYear(year, easter)
	}
}

func addHoliday(set map[string]struct{}, t time.Time) {
	set[t.Format(utils.DateLayout)] = struct{}{}
}

// TARGET closes on New Year, Good Friday, Easter Monday, Labour Day,
// Christmas and St Stephen's Day. No substitute days.
func buildTargetYear(year int, easter time.Time) {
	addHoliday(targetHolidays, utils.Date(year, time.January, 1))
	addHoliday(targetHolidays, easter.AddDate(0, 0, -2))
	addHoliday(targetHolidays, easter.AddDate(0, 0, 1))
	addHoliday(targetHolidays, utils.Date(year, time.May, 1))
	addHoliday(targetHolidays, utils.Date(year, time.December, 25))
	addHoliday(targetHolidays, utils.Date(year, time.December, 26))
}

// US federal observation: Saturday holidays observed Friday, Sunday
// holidays observed Monday.
func observedUS(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func buildUSNYYear(year int) {
	addHoliday(usnyHolidays, observedUS(utils.Date(year, time.January, 1)))
	addHoliday(usnyHolidays, nthWeekday(year, time.January, time.Monday, 3))
	addHoliday(usnyHolidays, nthWeekday(year, time.February, time.Monday, 3))
	addHoliday(usnyHolidays, lastWeekday(year, time.May, time.Monday))
	addHoliday(usnyHolidays, observedUS(utils.Date(year, time.June, 19)))
	addHoliday(usnyHolidays, observedUS(utils.Date(year, time.July, 4)))
	addHoliday(usnyHolidays, nthWeekday(year, time.September, time.Monday, 1))
	addHoliday(usnyHolidays, nthWeekday(year, time.October, time.Monday, 2))
	addHoliday(usnyHolidays, observedUS(utils.Date(year, time.November, 11)))
	addHoliday(usnyHolidays, nthWeekday(year, time.November, time.Thursday, 4))
	addHoliday(usnyHolidays, observedUS(utils.Date(year, time.December, 25)))
}

func buildGBLOYear(year int, easter time.Time) {
	addHoliday(gbloHolidays, rollForwardPastWeekend(utils.Date(year, time.January, 1)))
	addHoliday(gbloHolidays, easter.AddDate(0, 0, -2))
	addHoliday(gbloHolidays, easter.AddDate(0, 0, 1))
	addHoliday(gbloHolidays, nthWeekday(year, time.May, time.Monday, 1))
	addHoliday(gbloHolidays, lastWeekday(year, time.May, time.Monday))
	addHoliday(gbloHolidays, lastWeekday(year, time.August, time.Monday))

	// Christmas and Boxing Day take the first two non weekend days from
	// Dec 25 onward.
	first := rollForwardPastWeekend(utils.Date(year, time.December, 25))
	second := rollForwardPastWeekend(first.AddDate(0, 0, 1))
	addHoliday(gbloHolidays, first)
	addHoliday(gbloHolidays, second)
}

func rollForwardPastWeekend(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func nthWeekday(year int, month time.Month, day time.Weekday, n int) time.Time {
	t := utils.Date(year, month, 1)
	offset := (int(day) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, day time.Weekday) time.Time {
	t := utils.Date(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(t.Weekday()) - int(day) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

func isUSNYHoliday(t time.Time) bool {
	_, ok := usnyHolidays[t.Format(utils.DateLayout)]
	return ok
}

func isGBLOHoliday(t time.Time) bool {
	_, ok := gbloHolidays[t.Format(utils.DateLayout)]
	return ok
}
