package calibrate

import (
	"fmt"

	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
)

// fdStep is the default centered-difference bump for measures without
// analytic derivatives.
const fdStep = 1e-7

// Measure computes one node's calibration residual and its gradient
// against the group parameter vector. The target is folded in: par
// instruments carry the quote as their traded rate and price to zero,
// fixing nodes return forward minus quote. The solver drives every
// measure to zero.
type Measure func(s *State, n curve.Node, quote float64) (ValueDerivatives, error)

// PriceFunc prices a node to a scalar residual without derivatives.
type PriceFunc func(s *State, n curve.Node, quote float64) (float64, error)

// Measures dispatches nodes to measures by instrument kind. The zero
// value is unusable; start from StandardMeasures or NewMeasures.
type Measures struct {
	byKind map[string]Measure
}

// NewMeasures returns an empty registry.
func NewMeasures() *Measures {
	return &Measures{byKind: make(map[string]Measure)}
}

// StandardMeasures covers the built-in node kinds. Deposits, fixings,
// FRAs and both swap families carry analytic gradients; CDS nodes fall
// back to centered finite differences.
func StandardMeasures() *Measures {
	m := NewMeasures()
	m.Register(instruments.KindTermDeposit, termDepositMeasure)
	m.Register(instruments.KindIborFixing, iborFixingMeasure)
	m.Register(instruments.KindFra, fraMeasure)
	m.Register(instruments.KindFixedIborSwap, fixedIborSwapMeasure)
	m.Register(instruments.KindOvernightSwap, overnightSwapMeasure)
	m.Register(instruments.KindCds, FiniteDifference(cdsPrice, 0))
	return m
}

// Register binds a node kind to its measure, replacing any previous
// binding for that kind.
func (m *Measures) Register(kind string, measure Measure) {
	m.byKind[kind] = measure
}

func (m *Measures) lookup(kind string) (Measure, bool) {
	measure, ok := m.byKind[kind]
	return measure, ok
}

// FiniteDifference adapts a value-only pricer into a Measure by bumping
// every group parameter with a centered difference of the given step.
// A non-positive step selects the default.
func FiniteDifference(price PriceFunc, step float64) Measure {
	if step <= 0 {
		step = fdStep
	}
	return func(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
		base, err := price(s, n, quote)
		if err != nil {
			return ValueDerivatives{}, err
		}
		d := make([]float64, s.ParameterCount())
		for j := range d {
			up, err := price(s.withShift(j, step), n, quote)
			if err != nil {
				return ValueDerivatives{}, err
			}
			down, err := price(s.withShift(j, -step), n, quote)
			if err != nil {
				return ValueDerivatives{}, err
			}
			d[j] = (up - down) / (2 * step)
		}
		return ValueDerivatives{Value: base, Derivatives: d}, nil
	}
}

func wrongNodeType(measure string, n curve.Node) error {
	return &InvalidConfigurationError{
		Reason: fmt.Sprintf("%s cannot price node type %T (kind %s)", measure, n, n.Kind()),
	}
}

// termDepositMeasure prices a cash deposit: lend 1 at start against
// 1 + alpha*K at maturity, discounted on the deposit currency's curve.
func termDepositMeasure(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
	dep, ok := n.(instruments.TermDepositNode)
	if !ok {
		return ValueDerivatives{}, wrongNodeType("termDepositMeasure", n)
	}
	start := dep.Start(s.Valuation())
	end := dep.End(s.Valuation())
	alpha := dep.DayCount.YearFraction(start, end)

	dfStart, err := s.DiscountFactor(dep.Currency, start)
	if err != nil {
		return ValueDerivatives{}, err
	}
	dfEnd, err := s.DiscountFactor(dep.Currency, end)
	if err != nil {
		return ValueDerivatives{}, err
	}
	return dfEnd.Scale(1 + alpha*quote).Sub(dfStart), nil
}

// iborFixingMeasure anchors the short end: the index forward over its
// natural period starting at spot must equal the quoted fixing.
func iborFixingMeasure(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
	fix, ok := n.(instruments.IborFixingNode)
	if !ok {
		return ValueDerivatives{}, wrongNodeType("iborFixingMeasure", n)
	}
	index := fix.Conv.Index
	fwd, err := s.ForwardRate(index, fix.Start(s.Valuation()), fix.End(s.Valuation()), index.DayCount())
	if err != nil {
		return ValueDerivatives{}, err
	}
	return fwd.AddScalar(-quote), nil
}

// fraMeasure prices a forward rate agreement with ISDA discounting:
// the rate difference settles at the period start, divided by the
// realized growth factor.
func fraMeasure(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
	fra, ok := n.(instruments.FraNode)
	if !ok {
		return ValueDerivatives{}, wrongNodeType("fraMeasure", n)
	}
	index := fra.Conv.Index
	start := fra.Start(s.Valuation())
	end := fra.End(s.Valuation())
	alpha := index.DayCount().YearFraction(start, end)

	fwd, err := s.ForwardRate(index, start, end, index.DayCount())
	if err != nil {
		return ValueDerivatives{}, err
	}
	dfPay, err := s.DiscountFactor(index.Currency(), start)
	if err != nil {
		return ValueDerivatives{}, err
	}
	num := fwd.AddScalar(-quote).Scale(alpha)
	den := fwd.Scale(alpha).AddScalar(1)
	return dfPay.Mul(num.Div(den)), nil
}

// fixedIborSwapMeasure prices a par swap as PV(receive float) minus
// PV(pay fixed at the quoted rate).
func fixedIborSwapMeasure(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
	swap, ok := n.(instruments.FixedIborSwapNode)
	if !ok {
		return ValueDerivatives{}, wrongNodeType("fixedIborSwapMeasure", n)
	}
	valuation := s.Valuation()
	ccy := swap.Conv.Fixed.Currency
	index := swap.Conv.Float.Index

	pv := zeroDerivatives(s.ParameterCount())

	floatDates := swap.FloatSchedule(valuation)
	for i := 0; i+1 < len(floatDates); i++ {
		start, end := floatDates[i], floatDates[i+1]
		fwd, err := s.ForwardRate(index, start, end, index.DayCount())
		if err != nil {
			return ValueDerivatives{}, err
		}
		df, err := s.DiscountFactor(ccy, end)
		if err != nil {
			return ValueDerivatives{}, err
		}
		alpha := swap.Conv.Float.DayCount.YearFraction(start, end)
		pv = pv.Add(fwd.Mul(df).Scale(alpha))
	}

	fixedDates := swap.FixedSchedule(valuation)
	for i := 0; i+1 < len(fixedDates); i++ {
		start, end := fixedDates[i], fixedDates[i+1]
		df, err := s.DiscountFactor(ccy, end)
		if err != nil {
			return ValueDerivatives{}, err
		}
		alpha := swap.Conv.Fixed.DayCount.YearFraction(start, end)
		pv = pv.AddScaled(df, -alpha*quote)
	}
	return pv, nil
}

// overnightSwapMeasure prices an OIS. Each floating coupon pays the
// compounded overnight growth of its period, read as a ratio of pseudo
// discount factors on the overnight curve; the sum telescopes when the
// curve discounts itself.
func overnightSwapMeasure(s *State, n curve.Node, quote float64) (ValueDerivatives, error) {
	ois, ok := n.(instruments.OvernightSwapNode)
	if !ok {
		return ValueDerivatives{}, wrongNodeType("overnightSwapMeasure", n)
	}
	valuation := s.Valuation()
	ccy := ois.Conv.Fixed.Currency
	index := ois.Conv.Float.Index

	pv := zeroDerivatives(s.ParameterCount())

	floatDates := ois.FloatSchedule(valuation)
	for i := 0; i+1 < len(floatDates); i++ {
		start, end := floatDates[i], floatDates[i+1]
		pStart, err := s.ForwardDF(index, start)
		if err != nil {
			return ValueDerivatives{}, err
		}
		pEnd, err := s.ForwardDF(index, end)
		if err != nil {
			return ValueDerivatives{}, err
		}
		df, err := s.DiscountFactor(ccy, end)
		if err != nil {
			return ValueDerivatives{}, err
		}
		growth := pStart.Div(pEnd).AddScalar(-1)
		pv = pv.Add(growth.Mul(df))
	}

	fixedDates := ois.FixedSchedule(valuation)
	for i := 0; i+1 < len(fixedDates); i++ {
		start, end := fixedDates[i], fixedDates[i+1]
		df, err := s.DiscountFactor(ccy, end)
		if err != nil {
			return ValueDerivatives{}, err
		}
		alpha := ois.Conv.Fixed.DayCount.YearFraction(start, end)
		pv = pv.AddScaled(df, -alpha*quote)
	}
	return pv, nil
}

// cdsPrice values a par CDS: protection minus premium, with premium
// accrual from the step-in date and half-period accrual on default.
func cdsPrice(s *State, n curve.Node, quote float64) (float64, error) {
	cds, ok := n.(instruments.CdsNode)
	if !ok {
		return 0, wrongNodeType("cdsPrice", n)
	}
	valuation := s.Valuation()
	ccy := cds.Conv.Currency
	dates := cds.Schedule(valuation)

	qPrev, err := s.SurvivalProbability(cds.Entity, ccy, dates[0])
	if err != nil {
		return 0, err
	}
	prevQ := qPrev.Value

	protection, premium := 0.0, 0.0
	for i := 1; i < len(dates); i++ {
		df, err := s.DiscountFactor(ccy, dates[i])
		if err != nil {
			return 0, err
		}
		q, err := s.SurvivalProbability(cds.Entity, ccy, dates[i])
		if err != nil {
			return 0, err
		}
		alpha := cds.Conv.DayCount.YearFraction(dates[i-1], dates[i])
		defaulted := prevQ - q.Value
		protection += df.Value * defaulted
		premium += alpha * df.Value * (q.Value + 0.5*defaulted)
		prevQ = q.Value
	}
	return (1-cds.Conv.RecoveryRate)*protection - quote*premium, nil
}
