package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// KindTermDeposit names the cash deposit node family.
const KindTermDeposit = "TermDeposit"

// TermDepositNode pins a discount curve pillar to a cash deposit quote:
// at par, df(start) = (1 + alpha*K) * df(end).
type TermDepositNode struct {
	Currency    market.Currency
	Tenor       Tenor
	DayCount    market.DayCount
	SpotLagDays int
	Calendar    calendar.CalendarID
	Quote       market.QuoteKey
}

// TermDeposit builds a deposit node with the market defaults of the
// currency: ACT/360, T+2.
func TermDeposit(ccy market.Currency, tenor Tenor, quote market.QuoteKey) TermDepositNode {
	return TermDepositNode{
		Currency:    ccy,
		Tenor:       tenor,
		DayCount:    market.Act360,
		SpotLagDays: 2,
		Calendar:    calendarFor(ccy),
		Quote:       quote,
	}
}

func (n TermDepositNode) Kind() string              { return KindTermDeposit }
func (n TermDepositNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n TermDepositNode) Label() string {
	return fmt.Sprintf("DEPO %s %s", n.Currency, n.Tenor)
}

// Start returns the deposit's effective date.
func (n TermDepositNode) Start(valuation time.Time) time.Time {
	return SpotDate(valuation, n.SpotLagDays, n.Calendar)
}

// End returns the deposit's maturity.
func (n TermDepositNode) End(valuation time.Time) time.Time {
	return n.Tenor.AddTo(n.Calendar, n.Start(valuation))
}

func (n TermDepositNode) PillarDate(valuation time.Time) time.Time {
	return n.End(valuation)
}
