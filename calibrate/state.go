package calibrate

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/market"
)

// State is the trial curve bundle measures price against: the group's
// curves under the current parameter vector, addressed by role. Every
// query returns the value together with its dense gradient against the
// whole parameter vector, which is what lets the solver assemble the
// Jacobian row by row.
type State struct {
	valuation time.Time
	curves    []*curve.Curve
	offsets   []int
	total     int
	discount  map[market.Currency]int
	forward   map[market.Index]int
	credit    map[curve.CreditAssignment]int
	fixings   map[market.Index]market.FixingSeries
}

// Valuation returns the valuation date of the trial.
func (s *State) Valuation() time.Time { return s.valuation }

// ParameterCount returns the length of the group parameter vector.
func (s *State) ParameterCount() int { return s.total }

// Fixing reports a published fixing for the index, when a series was
// supplied to the calibration call.
func (s *State) Fixing(index market.Index, date time.Time) (float64, bool) {
	series, ok := s.fixings[index]
	if !ok {
		return 0, false
	}
	return series.RateOn(date)
}

// DiscountFactor prices a cashflow date off the discount curve assigned
// to the currency.
func (s *State) DiscountFactor(ccy market.Currency, date time.Time) (ValueDerivatives, error) {
	idx, ok := s.discount[ccy]
	if !ok {
		return ValueDerivatives{}, &InvalidConfigurationError{
			Reason: fmt.Sprintf("no discount curve for currency %s", ccy),
		}
	}
	return s.curveDiscountFactor(idx, date), nil
}

// ForwardDF reads the pseudo discount factor of the curve projecting
// the index.
func (s *State) ForwardDF(index market.Index, date time.Time) (ValueDerivatives, error) {
	idx, ok := s.forward[index]
	if !ok {
		return ValueDerivatives{}, &InvalidConfigurationError{
			Reason: fmt.Sprintf("no forward curve for index %s", index),
		}
	}
	return s.curveDiscountFactor(idx, date), nil
}

// ForwardRate computes the simply compounded forward of the index over
// [start, end] from its curve, accrued on the given day count.
func (s *State) ForwardRate(index market.Index, start, end time.Time, dc market.DayCount) (ValueDerivatives, error) {
	pStart, err := s.ForwardDF(index, start)
	if err != nil {
		return ValueDerivatives{}, err
	}
	pEnd, err := s.ForwardDF(index, end)
	if err != nil {
		return ValueDerivatives{}, err
	}
	alpha := dc.YearFraction(start, end)
	return pStart.Div(pEnd).AddScalar(-1).Scale(1 / alpha), nil
}

// SurvivalProbability reads the survival curve assigned to the entity
// and currency pair.
func (s *State) SurvivalProbability(entity market.Entity, ccy market.Currency, date time.Time) (ValueDerivatives, error) {
	idx, ok := s.credit[curve.CreditAssignment{Entity: entity, Currency: ccy}]
	if !ok {
		return ValueDerivatives{}, &InvalidConfigurationError{
			Reason: fmt.Sprintf("no survival curve for %s/%s", entity, ccy),
		}
	}
	return s.curveDiscountFactor(idx, date), nil
}

// curveDiscountFactor reads curve idx at the date and scatters the
// curve-local gradient into the group parameter vector.
func (s *State) curveDiscountFactor(idx int, date time.Time) ValueDerivatives {
	c := s.curves[idx]
	x := c.DayCount().YearFraction(s.valuation, date)
	df, local := c.DiscountFactorWithGradient(x)
	d := make([]float64, s.total)
	copy(d[s.offsets[idx]:], local)
	return ValueDerivatives{Value: df, Derivatives: d}
}

// withShift returns a state whose j-th parameter is moved by h, used by
// the finite-difference measure fallback. Curves not owning parameter j
// are shared with the receiver.
func (s *State) withShift(j int, h float64) *State {
	clone := *s
	clone.curves = append([]*curve.Curve(nil), s.curves...)
	for idx, c := range s.curves {
		off := s.offsets[idx]
		if j < off || j >= off+c.ParameterCount() {
			continue
		}
		ys := c.YValues()
		ys[j-off] += h
		clone.curves[idx] = c.WithYValues(ys)
		break
	}
	return &clone
}
