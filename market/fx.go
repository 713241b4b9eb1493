package market

import (
	"fmt"
	"sort"
)

// CurrencyPair is an ordered base/quote pair.
type CurrencyPair struct {
	Base  Currency
	Quote Currency
}

func (p CurrencyPair) String() string {
	return string(p.Base) + "/" + string(p.Quote)
}

// Inverse swaps base and quote.
func (p CurrencyPair) Inverse() CurrencyPair {
	return CurrencyPair{Base: p.Quote, Quote: p.Base}
}

// FxMatrix is an immutable table of spot exchange rates. A rate keyed
// EUR/USD is the number of USD per one EUR.
type FxMatrix struct {
	rates      map[CurrencyPair]float64
	currencies []Currency
}

// NewFxMatrix copies the given rates. Pairs quoting a currency against
// itself and non-positive rates are rejected.
func NewFxMatrix(rates map[CurrencyPair]float64) (FxMatrix, error) {
	m := FxMatrix{rates: make(map[CurrencyPair]float64, len(rates))}
	seen := map[Currency]struct{}{}
	for p, r := range rates {
		if p.Base == p.Quote {
			return FxMatrix{}, fmt.Errorf("NewFxMatrix: pair %s quotes a currency against itself", p)
		}
		if r <= 0 {
			return FxMatrix{}, fmt.Errorf("NewFxMatrix: non-positive rate %g for %s", r, p)
		}
		m.rates[p] = r
		seen[p.Base] = struct{}{}
		seen[p.Quote] = struct{}{}
	}
	for c := range seen {
		m.currencies = append(m.currencies, c)
	}
	sort.Slice(m.currencies, func(i, j int) bool { return m.currencies[i] < m.currencies[j] })
	return m, nil
}

// Rate returns the exchange rate from base to quote. Identity pairs return
// 1 even for unlisted currencies. A missing direct pair falls back to the
// inverse, then to triangulation through a single shared currency; the
// shared currency is searched in sorted order so the result is
// deterministic.
func (m FxMatrix) Rate(base, quote Currency) (float64, error) {
	if base == quote {
		return 1, nil
	}
	if r, ok := m.direct(base, quote); ok {
		return r, nil
	}
	for _, via := range m.currencies {
		if via == base || via == quote {
			continue
		}
		r1, ok1 := m.direct(base, via)
		r2, ok2 := m.direct(via, quote)
		if ok1 && ok2 {
			return r1 * r2, nil
		}
	}
	return 0, fmt.Errorf("FxMatrix: no rate for %s/%s", base, quote)
}

func (m FxMatrix) direct(base, quote Currency) (float64, bool) {
	if r, ok := m.rates[CurrencyPair{Base: base, Quote: quote}]; ok {
		return r, true
	}
	if r, ok := m.rates[CurrencyPair{Base: quote, Quote: base}]; ok {
		return 1 / r, true
	}
	return 0, false
}

// Convert restates an amount from one currency into another.
func (m FxMatrix) Convert(amount float64, from, to Currency) (float64, error) {
	r, err := m.Rate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * r, nil
}

// Currencies returns the sorted currencies the matrix covers.
func (m FxMatrix) Currencies() []Currency {
	out := make([]Currency, len(m.currencies))
	copy(out, m.currencies)
	return out
}
