package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// KindCds names the credit default swap node family.
const KindCds = "Cds"

// CdsNode calibrates a survival curve pillar to a par CDS spread.
// Protection runs from the step-in date; the premium leg accrues from the
// same date, so a spot quoted spread carries no accrued adjustment.
type CdsNode struct {
	Conv   CdsConvention
	Entity market.Entity
	Tenor  Tenor
	Quote  market.QuoteKey
}

// Cds builds a CDS node from a convention preset.
func Cds(conv CdsConvention, entity market.Entity, tenor Tenor, quote market.QuoteKey) CdsNode {
	return CdsNode{Conv: conv, Entity: entity, Tenor: tenor, Quote: quote}
}

func (n CdsNode) Kind() string              { return KindCds }
func (n CdsNode) QuoteKey() market.QuoteKey { return n.Quote }

func (n CdsNode) Label() string {
	return fmt.Sprintf("CDS %s %s", n.Entity, n.Tenor)
}

// StepIn returns the protection start, one business day after valuation.
func (n CdsNode) StepIn(valuation time.Time) time.Time {
	return calendar.AddBusinessDays(n.Conv.Calendar, valuation, 1)
}

// Schedule returns the premium leg accrual boundaries from step-in to
// maturity.
func (n CdsNode) Schedule(valuation time.Time) []time.Time {
	stepIn := n.StepIn(valuation)
	months, ok := n.Tenor.Months()
	if !ok {
		return []time.Time{stepIn, n.Tenor.AddTo(n.Conv.Calendar, stepIn)}
	}
	return Schedule(stepIn, months, n.Conv.FreqMonths, n.Conv.Calendar)
}

func (n CdsNode) PillarDate(valuation time.Time) time.Time {
	sched := n.Schedule(valuation)
	return sched[len(sched)-1]
}
