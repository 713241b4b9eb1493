package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/market"
)

// KindOvernightSwap names the OIS node family.
const KindOvernightSwap = "OvernightSwap"

// OvernightSwapNode calibrates a curve pillar to a par OIS rate. The
// floating leg compounds the overnight rate over each coupon period,
// which the measure reads off the index curve's pseudo discount factors.
type OvernightSwapNode struct {
	Conv  SwapConvention
	Tenor Tenor
	Quote market.QuoteKey
}

// OvernightSwap builds an OIS node from a convention preset.
func OvernightSwap(conv SwapConvention, tenor Tenor, quote market.QuoteKey) OvernightSwapNode {
	return OvernightSwapNode{Conv: conv, Tenor: tenor, Quote: quote}
}

func (n OvernightSwapNode) Kind() string              { return KindOvernightSwap }
func (n OvernightSwapNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n OvernightSwapNode) Label() string {
	return fmt.Sprintf("OIS %s %s", n.Conv.Float.Index, n.Tenor)
}

// FixedSchedule returns the fixed leg accrual boundaries.
func (n OvernightSwapNode) FixedSchedule(valuation time.Time) []time.Time {
	return legSchedule(valuation, n.Conv.SpotLagDays, n.Tenor, n.Conv.Fixed.FreqMonths, n.Conv.Fixed.Calendar)
}

// FloatSchedule returns the floating leg accrual boundaries.
func (n OvernightSwapNode) FloatSchedule(valuation time.Time) []time.Time {
	return legSchedule(valuation, n.Conv.SpotLagDays, n.Tenor, n.Conv.Float.FreqMonths, n.Conv.Float.Calendar)
}

func (n OvernightSwapNode) PillarDate(valuation time.Time) time.Time {
	fixed := n.FixedSchedule(valuation)
	return fixed[len(fixed)-1]
}
