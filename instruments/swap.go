package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// KindFixedIborSwap names the fixed-vs-ibor swap node family.
const KindFixedIborSwap = "FixedIborSwap"

// FixedIborSwapNode calibrates a forward curve pillar to a par swap rate:
// the swap struck at the quote has zero present value.
type FixedIborSwapNode struct {
	Conv  SwapConvention
	Tenor Tenor
	Quote market.QuoteKey
}

// FixedIborSwap builds a swap node from a convention preset.
func FixedIborSwap(conv SwapConvention, tenor Tenor, quote market.QuoteKey) FixedIborSwapNode {
	return FixedIborSwapNode{Conv: conv, Tenor: tenor, Quote: quote}
}

func (n FixedIborSwapNode) Kind() string              { return KindFixedIborSwap }
func (n FixedIborSwapNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n FixedIborSwapNode) Label() string {
	return fmt.Sprintf("IRS %s %s", n.Conv.Float.Index, n.Tenor)
}

// FixedSchedule returns the fixed leg accrual boundaries.
func (n FixedIborSwapNode) FixedSchedule(valuation time.Time) []time.Time {
	return legSchedule(valuation, n.Conv.SpotLagDays, n.Tenor, n.Conv.Fixed.FreqMonths, n.Conv.Fixed.Calendar)
}

// FloatSchedule returns the floating leg accrual boundaries.
func (n FixedIborSwapNode) FloatSchedule(valuation time.Time) []time.Time {
	return legSchedule(valuation, n.Conv.SpotLagDays, n.Tenor, n.Conv.Float.FreqMonths, n.Conv.Float.Calendar)
}

func (n FixedIborSwapNode) PillarDate(valuation time.Time) time.Time {
	fixed := n.FixedSchedule(valuation)
	return fixed[len(fixed)-1]
}

// legSchedule expands one leg of a spot starting swap. Tenors without a
// month representation (days, weeks) collapse to a single period.
func legSchedule(valuation time.Time, spotLagDays int, tenor Tenor, freqMonths int, cal calendar.CalendarID) []time.Time {
	spot := SpotDate(valuation, spotLagDays, cal)
	months, ok := tenor.Months()
	if !ok {
		return []time.Time{spot, tenor.AddTo(cal, spot)}
	}
	return Schedule(spot, months, freqMonths, cal)
}
