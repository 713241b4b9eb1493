package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/market"
)

// Node binds one calibration instrument and one quote into a curve
// definition. Concrete node types live in the instruments package and
// satisfy this interface structurally.
type Node interface {
	// Kind names the instrument family; the calibration measure set
	// dispatches on it.
	Kind() string
	// QuoteKey identifies the quote the node calibrates to.
	QuoteKey() market.QuoteKey
	// Label describes the node for diagnostics, e.g. "OIS 5Y".
	Label() string
	// PillarDate produces the node's curve date from the valuation date.
	PillarDate(valuation time.Time) time.Time
}

// Definition describes one curve to calibrate. Zero values for DayCount,
// YType and the interpolation fields fall back to ACT/365F zero rate
// curves with linear interpolation and flat extrapolation.
type Definition struct {
	Name        string
	DayCount    market.DayCount
	YType       ValueType
	Interp      Interpolator
	ExtrapLeft  Extrapolator
	ExtrapRight Extrapolator
	Nodes       []Node
	// Seed optionally fixes the flat initial guess; when zero the first
	// node's quote seeds the curve.
	Seed float64
}

// WithDefaults fills the zero-valued optional fields.
func (d Definition) WithDefaults() Definition {
	if d.DayCount == "" {
		d.DayCount = market.Act365F
	}
	if d.YType == "" {
		d.YType = ValueTypeZeroRate
	}
	if d.Interp == nil {
		d.Interp = LinearInterpolator{}
	}
	if d.ExtrapLeft == nil {
		d.ExtrapLeft = FlatExtrapolator{}
	}
	if d.ExtrapRight == nil {
		d.ExtrapRight = FlatExtrapolator{}
	}
	return d
}

// Validate checks the definition after defaulting.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("curve definition: name is required")
	}
	if err := d.DayCount.Validate(); err != nil {
		return fmt.Errorf("curve %s: %w", d.Name, err)
	}
	if err := d.YType.Validate(); err != nil {
		return fmt.Errorf("curve %s: %w", d.Name, err)
	}
	if len(d.Nodes) == 0 {
		return fmt.Errorf("curve %s: at least one node is required", d.Name)
	}
	for i, n := range d.Nodes {
		if n == nil {
			return fmt.Errorf("curve %s: node %d is nil", d.Name, i)
		}
		if n.QuoteKey() == "" {
			return fmt.Errorf("curve %s: node %d (%s) has no quote key", d.Name, i, n.Label())
		}
	}
	return nil
}

// CreditAssignment keys a survival curve by reference entity and currency.
type CreditAssignment struct {
	Entity   market.Entity
	Currency market.Currency
}

// GroupEntry assigns one curve its roles inside a group: the currencies it
// discounts, the indices it projects, the credit pairs it survives.
type GroupEntry struct {
	Curve              Definition
	DiscountCurrencies []market.Currency
	ForwardIndices     []market.Index
	CreditEntities     []CreditAssignment
}

// GroupDefinition is the unit of joint calibration: every curve in the
// group is solved simultaneously against one quote snapshot.
type GroupDefinition struct {
	Name    string
	Entries []GroupEntry
}

// ParameterCount returns the total node count across the group.
func (g GroupDefinition) ParameterCount() int {
	n := 0
	for _, e := range g.Entries {
		n += len(e.Curve.Nodes)
	}
	return n
}

// Validate rejects structurally broken groups before any solving starts:
// duplicate curve names, a currency discounted by two curves, an index
// projected by two curves, a credit pair covered twice, or a curve with no
// role at all.
func (g GroupDefinition) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("curve group: name is required")
	}
	if len(g.Entries) == 0 {
		return fmt.Errorf("curve group %s: no curves", g.Name)
	}

	names := map[string]struct{}{}
	discount := map[market.Currency]string{}
	forward := map[market.Index]string{}
	credit := map[CreditAssignment]string{}

	for _, e := range g.Entries {
		def := e.Curve.WithDefaults()
		if err := def.Validate(); err != nil {
			return fmt.Errorf("curve group %s: %w", g.Name, err)
		}
		if _, dup := names[def.Name]; dup {
			return fmt.Errorf("curve group %s: duplicate curve name %s", g.Name, def.Name)
		}
		names[def.Name] = struct{}{}

		if len(e.DiscountCurrencies)+len(e.ForwardIndices)+len(e.CreditEntities) == 0 {
			return fmt.Errorf("curve group %s: curve %s has no discount, forward or credit role", g.Name, def.Name)
		}

		for _, ccy := range e.DiscountCurrencies {
			if prev, dup := discount[ccy]; dup {
				return fmt.Errorf("curve group %s: currency %s discounted by both %s and %s",
					g.Name, ccy, prev, def.Name)
			}
			discount[ccy] = def.Name
		}
		for _, idx := range e.ForwardIndices {
			if err := idx.Validate(); err != nil {
				return fmt.Errorf("curve group %s: curve %s: %w", g.Name, def.Name, err)
			}
			if prev, dup := forward[idx]; dup {
				return fmt.Errorf("curve group %s: index %s projected by both %s and %s",
					g.Name, idx, prev, def.Name)
			}
			forward[idx] = def.Name
		}
		for _, ca := range e.CreditEntities {
			if prev, dup := credit[ca]; dup {
				return fmt.Errorf("curve group %s: credit pair %s/%s covered by both %s and %s",
					g.Name, ca.Entity, ca.Currency, prev, def.Name)
			}
			credit[ca] = def.Name
		}
	}
	return nil
}
