package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// KindIborFixing names the index fixing node family.
const KindIborFixing = "IborFixing"

// IborFixingNode pins the short end of a forward curve: the index forward
// over its natural period starting at spot must equal the quoted fixing.
type IborFixingNode struct {
	Conv  DepositConvention
	Quote market.QuoteKey
}

// IborFixing builds a fixing node with the index's standard deposit
// convention.
func IborFixing(index market.Index, quote market.QuoteKey) IborFixingNode {
	return IborFixingNode{
		Conv: DepositConvention{
			Index:       index,
			SpotLagDays: 2,
			Calendar:    calendarFor(index.Currency()),
		},
		Quote: quote,
	}
}

func (n IborFixingNode) Kind() string              { return KindIborFixing }
func (n IborFixingNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n IborFixingNode) Label() string {
	return fmt.Sprintf("FIXING %s", n.Conv.Index)
}

// Start returns the fixing period's effective date.
func (n IborFixingNode) Start(valuation time.Time) time.Time {
	return SpotDate(valuation, n.Conv.SpotLagDays, n.Conv.Calendar)
}

// End returns the end of the index's natural deposit period.
func (n IborFixingNode) End(valuation time.Time) time.Time {
	return calendar.AddMonthsWithRoll(n.Conv.Calendar, n.Start(valuation), n.Conv.Index.TenorMonths())
}

func (n IborFixingNode) PillarDate(valuation time.Time) time.Time {
	return n.End(valuation)
}
