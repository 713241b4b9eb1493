package instruments

import (
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/utils"
)

// SpotDate applies a business-day spot lag to the valuation date. A zero
// lag leaves the valuation date untouched.
func SpotDate(valuation time.Time, lagDays int, cal calendar.CalendarID) time.Time {
	if lagDays == 0 {
		return valuation
	}
	return calendar.AddBusinessDays(cal, valuation, lagDays)
}

// Schedule builds accrual boundaries for one leg: the effective date
// followed by each adjusted payment date. Anchors are unadjusted month
// rolls counted back from maturity, so a tenor that is not a whole number
// of coupon periods gets a short front stub. Tenors at or below one
// coupon period produce a single period.
func Schedule(effective time.Time, tenorMonths, freqMonths int, cal calendar.CalendarID) []time.Time {
	if freqMonths <= 0 || tenorMonths <= freqMonths {
		return []time.Time{effective, calendar.AddMonthsWithRoll(cal, effective, tenorMonths)}
	}

	var anchorMonths []int
	for m := tenorMonths; m > 0; m -= freqMonths {
		anchorMonths = append(anchorMonths, m)
	}

	// Backward EOM roll: an effective date on the last calendar day of its
	// month pins every anchor to month end.
	eom := effective.Day() == daysInMonth(effective)

	dates := make([]time.Time, 0, len(anchorMonths)+1)
	dates = append(dates, effective)
	for i := len(anchorMonths) - 1; i >= 0; i-- {
		anchor := utils.AddMonth(effective, anchorMonths[i])
		if eom {
			anchor = time.Date(anchor.Year(), anchor.Month()+1, 0, 0, 0, 0, 0, time.UTC)
		}
		dates = append(dates, calendar.Adjust(cal, anchor))
	}
	return dates
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
