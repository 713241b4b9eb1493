package calibrate_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/calibrate"
	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
	"github.com/meenmo/multicurve/rates"
	"github.com/meenmo/multicurve/utils"
)

// flatOis is an OIS convention with no spot lag and no holidays, so
// period boundaries land on exact month anniversaries and short swaps
// have closed-form discount factors.
func flatOis() instruments.SwapConvention {
	return instruments.SwapConvention{
		SpotLagDays: 0,
		Fixed:       instruments.FixedLeg{Currency: market.EUR, DayCount: market.Dc30360, FreqMonths: 12, Calendar: calendar.NONE},
		Float:       instruments.FloatLeg{Index: market.EONIA, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.NONE},
	}
}

func singleCurveOisGroup(def curve.Definition) curve.GroupDefinition {
	return curve.GroupDefinition{
		Name: "EUR-TEST",
		Entries: []curve.GroupEntry{{
			Curve:              def,
			DiscountCurrencies: []market.Currency{market.EUR},
			ForwardIndices:     []market.Index{market.EONIA},
		}},
	}
}

func flatOisNodes() []curve.Node {
	conv := flatOis()
	return []curve.Node{
		instruments.OvernightSwap(conv, "1Y", "OIS-1Y"),
		instruments.OvernightSwap(conv, "2Y", "OIS-2Y"),
		instruments.OvernightSwap(conv, "5Y", "OIS-5Y"),
	}
}

func flatOisQuotes() *marketdata.Snapshot {
	return marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"OIS-1Y": 0.01,
		"OIS-2Y": 0.015,
		"OIS-5Y": 0.02,
	})
}

func TestCalibrateSingleCurveOis(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	group := singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: flatOisNodes()})

	provider, err := calibrate.Calibrate(context.Background(), group, valuation, flatOisQuotes(), nil, market.FxMatrix{})
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}

	diag := provider.Diagnostics()
	if diag.Iterations > 10 {
		t.Fatalf("expected at most 10 iterations, used %d", diag.Iterations)
	}
	if len(diag.History) != diag.Iterations {
		t.Fatalf("history has %d entries for %d iterations", len(diag.History), diag.Iterations)
	}
	if diag.ResidualNorm > 1e-9 {
		t.Fatalf("final residual norm too large: %g", diag.ResidualNorm)
	}

	// With annual 30/360 coupons on exact anniversaries the 1Y swap
	// forces df(1Y) = 1/(1+K) exactly.
	df, err := provider.DiscountFactor(market.EUR, utils.MustDate("2027-07-15"))
	if err != nil {
		t.Fatalf("DiscountFactor error: %v", err)
	}
	if want := 1 / 1.01; math.Abs(df-want) > 1e-9 {
		t.Fatalf("df(1Y) mismatch: got %.12f want %.12f", df, want)
	}

	df5, err := provider.DiscountFactor(market.EUR, utils.MustDate("2031-07-15"))
	if err != nil {
		t.Fatalf("DiscountFactor error: %v", err)
	}
	if df5 <= 0 || df5 >= df {
		t.Fatalf("df(5Y)=%.12f should sit strictly below df(1Y)=%.12f", df5, df)
	}
}

func TestCalibrateDiscountFactorCurve(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	group := singleCurveOisGroup(curve.Definition{
		Name:   "EONIA-DF",
		YType:  curve.ValueTypeDiscountFactor,
		Interp: curve.LogLinearInterpolator{},
		Nodes:  flatOisNodes(),
	})

	provider, err := calibrate.Calibrate(context.Background(), group, valuation, flatOisQuotes(), nil, market.FxMatrix{})
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}

	df, err := provider.DiscountFactor(market.EUR, utils.MustDate("2027-07-15"))
	if err != nil {
		t.Fatalf("DiscountFactor error: %v", err)
	}
	if want := 1 / 1.01; math.Abs(df-want) > 1e-9 {
		t.Fatalf("df(1Y) mismatch: got %.12f want %.12f", df, want)
	}

	c, ok := provider.Curve("EONIA-DF")
	if !ok {
		t.Fatalf("curve EONIA-DF missing from provider")
	}
	for i, y := range c.YValues() {
		if y <= 0 || y >= 1 {
			t.Fatalf("parameter %d should be a discount factor in (0,1), got %.12f", i, y)
		}
	}
}

func eurJointNodes() (eonia, e3m, e6m []curve.Node) {
	eonia = []curve.Node{
		instruments.TermDeposit(market.EUR, "3M", "EUR-DEPO-3M"),
		instruments.OvernightSwap(instruments.OisEonia, "1Y", "EUR-OIS-1Y"),
		instruments.OvernightSwap(instruments.OisEonia, "2Y", "EUR-OIS-2Y"),
		instruments.OvernightSwap(instruments.OisEonia, "3Y", "EUR-OIS-3Y"),
		instruments.OvernightSwap(instruments.OisEonia, "5Y", "EUR-OIS-5Y"),
		instruments.OvernightSwap(instruments.OisEonia, "7Y", "EUR-OIS-7Y"),
		instruments.OvernightSwap(instruments.OisEonia, "10Y", "EUR-OIS-10Y"),
	}
	e3m = []curve.Node{
		instruments.IborFixing(market.EURIBOR3M, "EUR-EURIBOR-3M"),
		instruments.Fra(market.EURIBOR3M, 3, 6, "EUR-FRA-3X6"),
		instruments.Fra(market.EURIBOR3M, 6, 9, "EUR-FRA-6X9"),
		instruments.FixedIborSwap(instruments.IrsEuribor3M, "2Y", "EUR-IRS3M-2Y"),
		instruments.FixedIborSwap(instruments.IrsEuribor3M, "3Y", "EUR-IRS3M-3Y"),
		instruments.FixedIborSwap(instruments.IrsEuribor3M, "5Y", "EUR-IRS3M-5Y"),
		instruments.FixedIborSwap(instruments.IrsEuribor3M, "10Y", "EUR-IRS3M-10Y"),
	}
	e6m = []curve.Node{
		instruments.IborFixing(market.EURIBOR6M, "EUR-EURIBOR-6M"),
		instruments.FixedIborSwap(instruments.IrsEuribor6M, "2Y", "EUR-IRS6M-2Y"),
		instruments.FixedIborSwap(instruments.IrsEuribor6M, "5Y", "EUR-IRS6M-5Y"),
		instruments.FixedIborSwap(instruments.IrsEuribor6M, "10Y", "EUR-IRS6M-10Y"),
	}
	return eonia, e3m, e6m
}

func eurJointGroup(reversed bool) curve.GroupDefinition {
	eonia, e3m, e6m := eurJointNodes()
	if reversed {
		eonia = reverseNodes(eonia)
		e3m = reverseNodes(e3m)
		e6m = reverseNodes(e6m)
	}
	return curve.GroupDefinition{
		Name: "EUR-STANDARD",
		Entries: []curve.GroupEntry{
			{
				Curve:              curve.Definition{Name: "EONIA", Nodes: eonia},
				DiscountCurrencies: []market.Currency{market.EUR},
				ForwardIndices:     []market.Index{market.EONIA},
			},
			{
				Curve:          curve.Definition{Name: "EURIBOR-3M", Nodes: e3m},
				ForwardIndices: []market.Index{market.EURIBOR3M},
			},
			{
				Curve:          curve.Definition{Name: "EURIBOR-6M", Nodes: e6m},
				ForwardIndices: []market.Index{market.EURIBOR6M},
			},
		},
	}
}

func reverseNodes(nodes []curve.Node) []curve.Node {
	out := make([]curve.Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

func eurJointQuotes() *marketdata.Snapshot {
	return marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"EUR-DEPO-3M":    0.0188,
		"EUR-OIS-1Y":     0.0195,
		"EUR-OIS-2Y":     0.0200,
		"EUR-OIS-3Y":     0.0205,
		"EUR-OIS-5Y":     0.0215,
		"EUR-OIS-7Y":     0.0225,
		"EUR-OIS-10Y":    0.0235,
		"EUR-EURIBOR-3M": 0.0205,
		"EUR-FRA-3X6":    0.0207,
		"EUR-FRA-6X9":    0.0209,
		"EUR-IRS3M-2Y":   0.0212,
		"EUR-IRS3M-3Y":   0.0216,
		"EUR-IRS3M-5Y":   0.0224,
		"EUR-IRS3M-10Y":  0.0243,
		"EUR-EURIBOR-6M": 0.0215,
		"EUR-IRS6M-2Y":   0.0222,
		"EUR-IRS6M-5Y":   0.0234,
		"EUR-IRS6M-10Y":  0.0253,
	})
}

func calibrateEurJoint(t *testing.T, reversed bool) *rates.Provider {
	t.Helper()
	provider, err := calibrate.Calibrate(context.Background(), eurJointGroup(reversed),
		utils.MustDate("2026-07-15"), eurJointQuotes(), nil, market.FxMatrix{})
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	return provider
}

func TestCalibrateJointEurGroup(t *testing.T) {
	t.Parallel()

	provider := calibrateEurJoint(t, false)

	diag := provider.Diagnostics()
	if diag.Iterations > 30 {
		t.Fatalf("joint group took %d iterations", diag.Iterations)
	}
	if len(diag.NodeResiduals) != 18 {
		t.Fatalf("expected 18 node residuals, got %d", len(diag.NodeResiduals))
	}
	for _, nr := range diag.NodeResiduals {
		if math.Abs(nr.Residual) > 1e-9 {
			t.Fatalf("node %s/%s reprices off target: residual %g", nr.Curve, nr.Label, nr.Residual)
		}
	}
	if first, last := diag.History[0], diag.History[len(diag.History)-1]; last >= first {
		t.Fatalf("residual norm did not improve: first %g last %g", first, last)
	}

	// The quoted 3M and 6M fixings come back out of the provider.
	fwd3m, err := provider.ForwardRate(market.EURIBOR3M, utils.MustDate("2026-07-15"))
	if err != nil {
		t.Fatalf("ForwardRate error: %v", err)
	}
	if math.Abs(fwd3m-0.0205) > 1e-9 {
		t.Fatalf("3M forward mismatch: got %.12f want 0.0205", fwd3m)
	}
	fwd6m, err := provider.ForwardRate(market.EURIBOR6M, utils.MustDate("2026-07-15"))
	if err != nil {
		t.Fatalf("ForwardRate error: %v", err)
	}
	if math.Abs(fwd6m-0.0215) > 1e-9 {
		t.Fatalf("6M forward mismatch: got %.12f want 0.0215", fwd6m)
	}

	// Discount factors decrease along the pillar dates.
	pillars := []string{"2027-07-19", "2028-07-17", "2029-07-17", "2031-07-17", "2033-07-18", "2036-07-17"}
	prev := 1.0
	for _, d := range pillars {
		df, err := provider.DiscountFactor(market.EUR, utils.MustDate(d))
		if err != nil {
			t.Fatalf("DiscountFactor(%s) error: %v", d, err)
		}
		if df <= 0 || df >= prev {
			t.Fatalf("df(%s)=%.12f breaks monotonic decrease (prev %.12f)", d, df, prev)
		}
		prev = df
	}

	// Projected forwards stay on a sane scale between pillars.
	for _, d := range []string{"2027-03-15", "2029-11-20", "2034-06-01"} {
		fwd, err := provider.ForwardRate(market.EURIBOR3M, utils.MustDate(d))
		if err != nil {
			t.Fatalf("ForwardRate(%s) error: %v", d, err)
		}
		if fwd < 0 || fwd > 0.1 {
			t.Fatalf("3M forward at %s out of range: %.6f", d, fwd)
		}
	}
}

func TestCalibrateDeterministic(t *testing.T) {
	t.Parallel()

	p1 := calibrateEurJoint(t, false)
	p2 := calibrateEurJoint(t, false)

	for _, name := range p1.CurveNames() {
		c1, _ := p1.Curve(name)
		c2, ok := p2.Curve(name)
		if !ok {
			t.Fatalf("curve %s missing from second run", name)
		}
		y1, y2 := c1.YValues(), c2.YValues()
		for i := range y1 {
			if y1[i] != y2[i] {
				t.Fatalf("curve %s parameter %d differs across runs: %x vs %x",
					name, i, math.Float64bits(y1[i]), math.Float64bits(y2[i]))
			}
		}
	}
}

func TestCalibrateNodeOrderInvariant(t *testing.T) {
	t.Parallel()

	p1 := calibrateEurJoint(t, false)
	p2 := calibrateEurJoint(t, true)

	for _, name := range p1.CurveNames() {
		c1, _ := p1.Curve(name)
		c2, ok := p2.Curve(name)
		if !ok {
			t.Fatalf("curve %s missing from shuffled run", name)
		}
		y1, y2 := c1.YValues(), c2.YValues()
		for i := range y1 {
			if y1[i] != y2[i] {
				t.Fatalf("curve %s parameter %d depends on node order", name, i)
			}
		}
	}
}

func TestCalibrateMissingQuote(t *testing.T) {
	t.Parallel()

	snap := marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"OIS-1Y": 0.01,
		"OIS-2Y": 0.015,
		// OIS-5Y deliberately absent.
	})
	group := singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: flatOisNodes()})

	_, err := calibrate.Calibrate(context.Background(), group, utils.MustDate("2026-07-15"), snap, nil, market.FxMatrix{})
	var missing *calibrate.MissingQuoteError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingQuoteError, got %v", err)
	}
	if missing.Key != "OIS-5Y" || missing.Curve != "EONIA" {
		t.Fatalf("error names wrong key or curve: %+v", missing)
	}
}

func TestCalibrateInvalidConfiguration(t *testing.T) {
	t.Parallel()

	conv := flatOis()
	valuation := utils.MustDate("2026-07-15")

	cases := []struct {
		name  string
		group curve.GroupDefinition
	}{
		{
			name: "duplicate pillar dates",
			group: singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: []curve.Node{
				instruments.OvernightSwap(conv, "1Y", "OIS-1Y"),
				instruments.OvernightSwap(conv, "1Y", "OIS-2Y"),
			}}),
		},
		{
			name: "currency discounted twice",
			group: curve.GroupDefinition{
				Name: "EUR-TEST",
				Entries: []curve.GroupEntry{
					{
						Curve:              curve.Definition{Name: "A", Nodes: []curve.Node{instruments.OvernightSwap(conv, "1Y", "OIS-1Y")}},
						DiscountCurrencies: []market.Currency{market.EUR},
					},
					{
						Curve:              curve.Definition{Name: "B", Nodes: []curve.Node{instruments.OvernightSwap(conv, "2Y", "OIS-2Y")}},
						DiscountCurrencies: []market.Currency{market.EUR},
					},
				},
			},
		},
		{
			name: "index projected twice",
			group: curve.GroupDefinition{
				Name: "EUR-TEST",
				Entries: []curve.GroupEntry{
					{
						Curve:          curve.Definition{Name: "A", Nodes: []curve.Node{instruments.OvernightSwap(conv, "1Y", "OIS-1Y")}},
						ForwardIndices: []market.Index{market.EONIA},
					},
					{
						Curve:          curve.Definition{Name: "B", Nodes: []curve.Node{instruments.OvernightSwap(conv, "2Y", "OIS-2Y")}},
						ForwardIndices: []market.Index{market.EONIA},
					},
				},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := calibrate.Calibrate(context.Background(), tc.group, valuation, flatOisQuotes(), nil, market.FxMatrix{})
			var invalid *calibrate.InvalidConfigurationError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidConfigurationError, got %v", err)
			}
		})
	}
}

func TestCalibrateSingularJacobian(t *testing.T) {
	t.Parallel()

	// The second curve projects EURIBOR 3M but its only node is an OIS
	// whose measure never touches that curve, leaving a zero Jacobian
	// column.
	group := curve.GroupDefinition{
		Name: "EUR-DEGENERATE",
		Entries: []curve.GroupEntry{
			{
				Curve:              curve.Definition{Name: "EONIA", Nodes: []curve.Node{instruments.OvernightSwap(instruments.OisEonia, "1Y", "OIS-1Y")}},
				DiscountCurrencies: []market.Currency{market.EUR},
				ForwardIndices:     []market.Index{market.EONIA},
			},
			{
				Curve:          curve.Definition{Name: "ORPHAN", Nodes: []curve.Node{instruments.OvernightSwap(instruments.OisEonia, "2Y", "OIS-2Y")}},
				ForwardIndices: []market.Index{market.EURIBOR3M},
			},
		},
	}
	snap := marketdata.NewSnapshot(map[market.QuoteKey]float64{"OIS-1Y": 0.01, "OIS-2Y": 0.012})

	_, err := calibrate.Calibrate(context.Background(), group, utils.MustDate("2026-07-15"), snap, nil, market.FxMatrix{})
	var singular *calibrate.SingularJacobianError
	if !errors.As(err, &singular) {
		t.Fatalf("expected SingularJacobianError, got %v", err)
	}
	if singular.Iteration != 1 {
		t.Fatalf("expected failure at iteration 1, got %d", singular.Iteration)
	}
}

func TestCalibrateNonConvergence(t *testing.T) {
	t.Parallel()

	group := singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: flatOisNodes()})
	starved := calibrate.NewCalibrator(nil, calibrate.Options{MaxIterations: 1})

	_, err := starved.Calibrate(context.Background(), group, utils.MustDate("2026-07-15"), flatOisQuotes(), nil, market.FxMatrix{})
	var nc *calibrate.NonConvergenceError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NonConvergenceError, got %v", err)
	}
	if nc.Iterations != 1 {
		t.Fatalf("expected 1 iteration, got %d", nc.Iterations)
	}
	if nc.ResidualNorm <= 0 || math.IsNaN(nc.ResidualNorm) {
		t.Fatalf("residual norm not reported: %g", nc.ResidualNorm)
	}
}

func TestCalibrateCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	group := singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: flatOisNodes()})
	_, err := calibrate.Calibrate(ctx, group, utils.MustDate("2026-07-15"), flatOisQuotes(), nil, market.FxMatrix{})
	if !errors.Is(err, calibrate.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation cause not wrapped: %v", err)
	}
}

func TestCalibrateSurvivalCurve(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	group := curve.GroupDefinition{
		Name: "EUR-CREDIT",
		Entries: []curve.GroupEntry{
			{
				Curve: curve.Definition{Name: "EONIA", Nodes: []curve.Node{
					instruments.OvernightSwap(instruments.OisEonia, "1Y", "EUR-OIS-1Y"),
					instruments.OvernightSwap(instruments.OisEonia, "2Y", "EUR-OIS-2Y"),
					instruments.OvernightSwap(instruments.OisEonia, "5Y", "EUR-OIS-5Y"),
				}},
				DiscountCurrencies: []market.Currency{market.EUR},
				ForwardIndices:     []market.Index{market.EONIA},
			},
			{
				Curve: curve.Definition{Name: "ACME-EUR", Nodes: []curve.Node{
					instruments.Cds(instruments.CdsEurQuarterly, "ACME", "1Y", "CDS-1Y"),
					instruments.Cds(instruments.CdsEurQuarterly, "ACME", "3Y", "CDS-3Y"),
					instruments.Cds(instruments.CdsEurQuarterly, "ACME", "5Y", "CDS-5Y"),
				}},
				CreditEntities: []curve.CreditAssignment{{Entity: "ACME", Currency: market.EUR}},
			},
		},
	}
	snap := marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"EUR-OIS-1Y": 0.0195,
		"EUR-OIS-2Y": 0.0200,
		"EUR-OIS-5Y": 0.0215,
		"CDS-1Y":     0.0060,
		"CDS-3Y":     0.0085,
		"CDS-5Y":     0.0100,
	})

	provider, err := calibrate.Calibrate(context.Background(), group, valuation, snap, nil, market.FxMatrix{})
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}

	for _, nr := range provider.Diagnostics().NodeResiduals {
		if math.Abs(nr.Residual) > 1e-9 {
			t.Fatalf("node %s/%s reprices off target: residual %g", nr.Curve, nr.Label, nr.Residual)
		}
	}

	prev := 1.0
	for _, d := range []string{"2027-07-16", "2029-07-16", "2031-07-16"} {
		q, err := provider.SurvivalProbability("ACME", market.EUR, utils.MustDate(d))
		if err != nil {
			t.Fatalf("SurvivalProbability(%s) error: %v", d, err)
		}
		if q <= 0 || q >= prev {
			t.Fatalf("survival at %s is %.12f, breaks monotonic decrease (prev %.12f)", d, q, prev)
		}
		prev = q
	}
	if prev < 0.90 {
		t.Fatalf("5Y survival implausibly low for a 100bp spread: %.6f", prev)
	}
}

// anchorNode pins a discount factor directly, used to exercise custom
// measure registration.
type anchorNode struct {
	date time.Time
	key  market.QuoteKey
}

func (n anchorNode) Kind() string              { return "ZeroAnchor" }
func (n anchorNode) QuoteKey() market.QuoteKey { return n.key }
func (n anchorNode) Label() string             { return "ANCHOR " + n.date.Format(utils.DateLayout) }
func (n anchorNode) PillarDate(valuation time.Time) time.Time {
	return n.date
}

func TestRegisterCustomMeasure(t *testing.T) {
	t.Parallel()

	valuation := utils.MustDate("2026-07-15")
	fixedRate := 0.0123

	measures := calibrate.StandardMeasures()
	measures.Register("ZeroAnchor", func(s *calibrate.State, n curve.Node, quote float64) (calibrate.ValueDerivatives, error) {
		// A fixing published on the valuation date beats the quote.
		target := quote
		if fix, ok := s.Fixing(market.EONIA, s.Valuation()); ok {
			target = fix
		}
		date := n.PillarDate(s.Valuation())
		x := market.Act365F.YearFraction(s.Valuation(), date)
		df, err := s.DiscountFactor(market.EUR, date)
		if err != nil {
			return calibrate.ValueDerivatives{}, err
		}
		return df.AddScalar(-math.Exp(-target * x)), nil
	})

	group := singleCurveOisGroup(curve.Definition{Name: "EONIA", Nodes: []curve.Node{
		anchorNode{date: utils.MustDate("2027-07-15"), key: "ANCHOR-1Y"},
		anchorNode{date: utils.MustDate("2028-07-15"), key: "ANCHOR-2Y"},
	}})
	snap := marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"ANCHOR-1Y": 0.05,
		"ANCHOR-2Y": 0.05,
	})
	fixings := map[market.Index]market.FixingSeries{
		market.EONIA: market.NewFixingSeries(map[time.Time]float64{valuation: fixedRate}),
	}

	provider, err := calibrate.NewCalibrator(measures, calibrate.DefaultOptions()).
		Calibrate(context.Background(), group, valuation, snap, fixings, market.FxMatrix{})
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}

	df, err := provider.DiscountFactor(market.EUR, utils.MustDate("2027-07-15"))
	if err != nil {
		t.Fatalf("DiscountFactor error: %v", err)
	}
	if want := math.Exp(-fixedRate * 1.0); math.Abs(df-want) > 1e-9 {
		t.Fatalf("fixing did not override the quote: got df %.12f want %.12f", df, want)
	}
}

func TestValueDerivativesArithmetic(t *testing.T) {
	t.Parallel()

	a := calibrate.ValueDerivatives{Value: 2, Derivatives: []float64{1, 0.5}}
	b := calibrate.ValueDerivatives{Value: 4, Derivatives: []float64{0.25, 3}}

	check := func(name string, got calibrate.ValueDerivatives, value float64, derivs []float64) {
		t.Helper()
		if math.Abs(got.Value-value) > 1e-15 {
			t.Fatalf("%s value mismatch: got %g want %g", name, got.Value, value)
		}
		for i := range derivs {
			if math.Abs(got.Derivatives[i]-derivs[i]) > 1e-15 {
				t.Fatalf("%s derivative %d mismatch: got %g want %g", name, i, got.Derivatives[i], derivs[i])
			}
		}
	}

	check("Add", a.Add(b), 6, []float64{1.25, 3.5})
	check("Sub", a.Sub(b), -2, []float64{0.75, -2.5})
	check("Mul", a.Mul(b), 8, []float64{4.5, 8})
	check("Div", a.Div(b), 0.5, []float64{0.21875, -0.25})
	check("Scale", a.Scale(3), 6, []float64{3, 1.5})
	check("AddScalar", a.AddScalar(1), 3, []float64{1, 0.5})
	check("AddScaled", a.AddScaled(b, 2), 10, []float64{1.5, 6.5})

	// Operands stay untouched.
	if a.Value != 2 || a.Derivatives[0] != 1 || b.Derivatives[1] != 3 {
		t.Fatalf("arithmetic mutated its operands: %+v %+v", a, b)
	}
}
