package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// KindFra names the forward rate agreement node family.
const KindFra = "Fra"

// FraNode calibrates a forward curve pillar to a FRA quote. The accrual
// period runs from spot+StartMonths to spot+EndMonths; settlement is
// ISDA-discounted at the period start.
type FraNode struct {
	Conv        FraConvention
	StartMonths int
	EndMonths   int
	Quote       market.QuoteKey
}

// Fra builds a FRA node with the index's standard convention.
func Fra(index market.Index, startMonths, endMonths int, quote market.QuoteKey) FraNode {
	return FraNode{
		Conv: FraConvention{
			Index:       index,
			SpotLagDays: 2,
			Calendar:    calendarFor(index.Currency()),
		},
		StartMonths: startMonths,
		EndMonths:   endMonths,
		Quote:       quote,
	}
}

func (n FraNode) Kind() string              { return KindFra }
func (n FraNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n FraNode) Label() string {
	return fmt.Sprintf("FRA %dMx%dM", n.StartMonths, n.EndMonths)
}

// Start returns the accrual period start.
func (n FraNode) Start(valuation time.Time) time.Time {
	spot := SpotDate(valuation, n.Conv.SpotLagDays, n.Conv.Calendar)
	return calendar.AddMonthsWithRoll(n.Conv.Calendar, spot, n.StartMonths)
}

// End returns the accrual period end.
func (n FraNode) End(valuation time.Time) time.Time {
	spot := SpotDate(valuation, n.Conv.SpotLagDays, n.Conv.Calendar)
	return calendar.AddMonthsWithRoll(n.Conv.Calendar, spot, n.EndMonths)
}

func (n FraNode) PillarDate(valuation time.Time) time.Time {
	return n.End(valuation)
}
