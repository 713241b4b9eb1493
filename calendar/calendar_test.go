package calendar_test

import (
	"testing"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/utils"
)

func TestIsBusinessDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cal  calendar.CalendarID
		date time.Time
		want bool
	}{
		{"target good friday", calendar.TARGET, utils.MustDate("2026-04-03"), false},
		{"target easter monday", calendar.TARGET, utils.MustDate("2026-04-06"), false},
		{"target labour day", calendar.TARGET, utils.MustDate("2026-05-01"), false},
		{"target plain wednesday", calendar.TARGET, utils.MustDate("2026-04-01"), true},
		{"target saturday", calendar.TARGET, utils.MustDate("2026-08-01"), false},
		{"usny thanksgiving", calendar.USNY, utils.MustDate("2026-11-26"), false},
		{"usny independence day observed", calendar.USNY, utils.MustDate("2026-07-03"), false},
		{"usny monday after july 4th", calendar.USNY, utils.MustDate("2026-07-06"), true},
		{"gblo spring bank holiday", calendar.GBLO, utils.MustDate("2026-05-25"), false},
		{"none saturday is open", calendar.NONE, utils.MustDate("2026-08-01"), true},
	}

	for _, tc := range cases {
		if got := calendar.IsBusinessDay(tc.cal, tc.date); got != tc.want {
			t.Fatalf("%s: IsBusinessDay(%s) = %v, want %v",
				tc.name, tc.date.Format(utils.DateLayout), got, tc.want)
		}
	}
}

func TestAdjustModifiedFollowing(t *testing.T) {
	t.Parallel()

	// Saturday inside the month rolls forward to Monday.
	got := calendar.Adjust(calendar.TARGET, utils.MustDate("2026-08-01"))
	if !got.Equal(utils.MustDate("2026-08-03")) {
		t.Fatalf("Adjust mismatch: got %s", got.Format(utils.DateLayout))
	}

	// Month-end Saturday rolls back to Friday instead of crossing the month.
	got = calendar.Adjust(calendar.TARGET, utils.MustDate("2026-10-31"))
	if !got.Equal(utils.MustDate("2026-10-30")) {
		t.Fatalf("Adjust mismatch: got %s", got.Format(utils.DateLayout))
	}

	// NONE never moves a date.
	got = calendar.Adjust(calendar.NONE, utils.MustDate("2026-08-01"))
	if !got.Equal(utils.MustDate("2026-08-01")) {
		t.Fatalf("Adjust mismatch: got %s", got.Format(utils.DateLayout))
	}
}

func TestAddBusinessDaysOverEaster(t *testing.T) {
	t.Parallel()

	// Wed 2026-04-01 plus two TARGET business days skips Good Friday,
	// the weekend and Easter Monday.
	got := calendar.AddBusinessDays(calendar.TARGET, utils.MustDate("2026-04-01"), 2)
	if !got.Equal(utils.MustDate("2026-04-07")) {
		t.Fatalf("AddBusinessDays mismatch: got %s", got.Format(utils.DateLayout))
	}

	back := calendar.AddBusinessDays(calendar.TARGET, got, -2)
	if !back.Equal(utils.MustDate("2026-04-01")) {
		t.Fatalf("AddBusinessDays mismatch going back: got %s", back.Format(utils.DateLayout))
	}
}

func TestAddMonthsWithRoll(t *testing.T) {
	t.Parallel()

	// Jan 30 + 1M clips to end of February, then adjusts off the weekend.
	got := calendar.AddMonthsWithRoll(calendar.TARGET, utils.MustDate("2026-01-30"), 1)
	if !got.Equal(utils.MustDate("2026-02-27")) {
		t.Fatalf("AddMonthsWithRoll mismatch: got %s", got.Format(utils.DateLayout))
	}

	// An end-of-month anchor stays end of month.
	got = calendar.AddMonthsWithRoll(calendar.TARGET, utils.MustDate("2026-02-28"), 12)
	if !got.Equal(utils.MustDate("2027-02-26")) {
		t.Fatalf("AddMonthsWithRoll mismatch: got %s", got.Format(utils.DateLayout))
	}

	// Plain mid-month roll on an open day is untouched.
	got = calendar.AddMonthsWithRoll(calendar.TARGET, utils.MustDate("2026-04-15"), 3)
	if !got.Equal(utils.MustDate("2026-07-15")) {
		t.Fatalf("AddMonthsWithRoll mismatch: got %s", got.Format(utils.DateLayout))
	}
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	t.Parallel()

	got := calendar.LastBusinessDayOfMonth(calendar.TARGET, utils.MustDate("2026-10-10"))
	if !got.Equal(utils.MustDate("2026-10-30")) {
		t.Fatalf("LastBusinessDayOfMonth mismatch: got %s", got.Format(utils.DateLayout))
	}
	if !calendar.IsEndOfMonth(calendar.TARGET, got) {
		t.Fatalf("IsEndOfMonth(%s) = false", got.Format(utils.DateLayout))
	}
}
