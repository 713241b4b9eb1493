package rates

import (
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/utils"
)

// ProviderConfig assembles a Provider. Maps and slices are copied, so
// the caller keeps ownership of its own collections.
type ProviderConfig struct {
	Valuation   time.Time
	Discount    map[market.Currency]*curve.Curve
	Forward     map[market.Index]*curve.Curve
	Credit      map[curve.CreditAssignment]*curve.Curve
	Fixings     map[market.Index]market.FixingSeries
	Fx          market.FxMatrix
	Diagnostics Diagnostics
}

// Provider is the calibrated output bundle: every curve of a group,
// queryable by role and date. It is immutable and safe for concurrent
// readers.
type Provider struct {
	valuation time.Time
	discount  map[market.Currency]*curve.Curve
	forward   map[market.Index]*curve.Curve
	credit    map[curve.CreditAssignment]*curve.Curve
	byName    map[string]*curve.Curve
	names     []string
	fixings   map[market.Index]market.FixingSeries
	fx        market.FxMatrix
	diag      Diagnostics
}

// NewProvider builds the bundle. At least one curve must be present.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.Valuation.IsZero() {
		return nil, fmt.Errorf("NewProvider: valuation date is required")
	}
	p := &Provider{
		valuation: cfg.Valuation,
		discount:  make(map[market.Currency]*curve.Curve, len(cfg.Discount)),
		forward:   make(map[market.Index]*curve.Curve, len(cfg.Forward)),
		credit:    make(map[curve.CreditAssignment]*curve.Curve, len(cfg.Credit)),
		byName:    make(map[string]*curve.Curve),
		fixings:   make(map[market.Index]market.FixingSeries, len(cfg.Fixings)),
		fx:        cfg.Fx,
		diag:      cfg.Diagnostics.clone(),
	}
	for ccy, c := range cfg.Discount {
		p.discount[ccy] = c
		p.byName[c.Name()] = c
	}
	for index, c := range cfg.Forward {
		p.forward[index] = c
		p.byName[c.Name()] = c
	}
	for key, c := range cfg.Credit {
		p.credit[key] = c
		p.byName[c.Name()] = c
	}
	for index, series := range cfg.Fixings {
		p.fixings[index] = series
	}
	if len(p.byName) == 0 {
		return nil, fmt.Errorf("NewProvider: no curves")
	}
	for name := range p.byName {
		p.names = append(p.names, name)
	}
	sort.Strings(p.names)
	return p, nil
}

// Valuation returns the valuation date the curves were built for.
func (p *Provider) Valuation() time.Time { return p.valuation }

// Diagnostics returns a copy of the calibration diagnostics.
func (p *Provider) Diagnostics() Diagnostics { return p.diag.clone() }

// CurveNames lists every curve in the bundle, sorted.
func (p *Provider) CurveNames() []string {
	return append([]string(nil), p.names...)
}

// Curve looks a curve up by name.
func (p *Provider) Curve(name string) (*curve.Curve, bool) {
	c, ok := p.byName[name]
	return c, ok
}

// DiscountFactor reads the discount factor for a cashflow in the given
// currency. Dates before the valuation date are rejected.
func (p *Provider) DiscountFactor(ccy market.Currency, date time.Time) (float64, error) {
	c, ok := p.discount[ccy]
	if !ok {
		return 0, fmt.Errorf("DiscountFactor: no discount curve for %s", ccy)
	}
	if date.Before(p.valuation) {
		return 0, fmt.Errorf("DiscountFactor: date %s before valuation %s",
			date.Format(utils.DateLayout), p.valuation.Format(utils.DateLayout))
	}
	return c.DiscountFactor(c.DayCount().YearFraction(p.valuation, date)), nil
}

// ZeroRate reads the continuously compounded zero rate for a currency.
// The date must be after the valuation date.
func (p *Provider) ZeroRate(ccy market.Currency, date time.Time) (float64, error) {
	c, ok := p.discount[ccy]
	if !ok {
		return 0, fmt.Errorf("ZeroRate: no discount curve for %s", ccy)
	}
	if !date.After(p.valuation) {
		return 0, fmt.Errorf("ZeroRate: date %s not after valuation %s",
			date.Format(utils.DateLayout), p.valuation.Format(utils.DateLayout))
	}
	return c.ZeroRate(c.DayCount().YearFraction(p.valuation, date)), nil
}

// ForwardRate returns the index rate fixing on the given date. Dates
// before the valuation date read the historical fixing series and fail
// when the fixing was never published. On the valuation date a
// published fixing wins over the curve. Later dates project the simply
// compounded forward over the index's natural period from its curve.
func (p *Provider) ForwardRate(index market.Index, fixingDate time.Time) (float64, error) {
	c, ok := p.forward[index]
	if !ok {
		return 0, fmt.Errorf("ForwardRate: no forward curve for %s", index)
	}
	if !fixingDate.After(p.valuation) {
		if series, ok := p.fixings[index]; ok {
			if rate, ok := series.RateOn(fixingDate); ok {
				return rate, nil
			}
		}
		if fixingDate.Before(p.valuation) {
			return 0, fmt.Errorf("ForwardRate: no published %s fixing on %s",
				index, fixingDate.Format(utils.DateLayout))
		}
	}

	start, end, err := indexPeriod(index, fixingDate)
	if err != nil {
		return 0, fmt.Errorf("ForwardRate: %w", err)
	}
	alpha := index.DayCount().YearFraction(start, end)
	dfStart := c.DiscountFactor(c.DayCount().YearFraction(p.valuation, start))
	dfEnd := c.DiscountFactor(c.DayCount().YearFraction(p.valuation, end))
	return (dfStart/dfEnd - 1) / alpha, nil
}

// indexPeriod maps a fixing date to the accrual period the index rate
// applies to. Term indices settle at spot and run for their tenor;
// overnight indices cover a single business day.
func indexPeriod(index market.Index, fixingDate time.Time) (time.Time, time.Time, error) {
	if index.IsOvernight() {
		cal := calendar.TARGET
		if index == market.SOFR {
			cal = calendar.USNY
		}
		start := calendar.AdjustFollowing(cal, fixingDate)
		return start, calendar.AddBusinessDays(cal, start, 1), nil
	}
	conv, err := instruments.DepositConventionFor(index)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := instruments.SpotDate(fixingDate, conv.SpotLagDays, conv.Calendar)
	end := calendar.AddMonthsWithRoll(conv.Calendar, start, index.TenorMonths())
	return start, end, nil
}

// SurvivalProbability reads the survival curve calibrated for the
// entity and currency. Dates before the valuation date are rejected.
func (p *Provider) SurvivalProbability(entity market.Entity, ccy market.Currency, date time.Time) (float64, error) {
	c, ok := p.credit[curve.CreditAssignment{Entity: entity, Currency: ccy}]
	if !ok {
		return 0, fmt.Errorf("SurvivalProbability: no survival curve for %s/%s", entity, ccy)
	}
	if date.Before(p.valuation) {
		return 0, fmt.Errorf("SurvivalProbability: date %s before valuation %s",
			date.Format(utils.DateLayout), p.valuation.Format(utils.DateLayout))
	}
	return c.DiscountFactor(c.DayCount().YearFraction(p.valuation, date)), nil
}

// FxRate converts through the FX matrix the provider was built with.
func (p *Provider) FxRate(base, quote market.Currency) (float64, error) {
	return p.fx.Rate(base, quote)
}
