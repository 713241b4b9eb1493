package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/meenmo/multicurve/calibrate"
	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
)

func main() {
	quotes := marketdata.NewSnapshot(map[market.QuoteKey]float64{
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
		"EUR-IRS3M-5Y":   0.0224,
		"EUR-IRS3M-10Y":  0.0243,
		"EUR-EURIBOR-6M": 0.0215,
		"EUR-IRS6M-2Y":   0.0222,
		"EUR-IRS6M-5Y":   0.0234,
		"EUR-IRS6M-10Y":  0.0253,
	})

	group := curve.GroupDefinition{
		Name: "EUR-STANDARD",
		Entries: []curve.GroupEntry{
			{
				Curve: curve.Definition{Name: "EONIA", Nodes: []curve.Node{
					instruments.TermDeposit(market.EUR, "3M", "EUR-DEPO-3M"),
					instruments.OvernightSwap(instruments.OisEonia, "1Y", "EUR-OIS-1Y"),
					instruments.OvernightSwap(instruments.OisEonia, "2Y", "EUR-OIS-2Y"),
					instruments.OvernightSwap(instruments.OisEonia, "3Y", "EUR-OIS-3Y"),
					instruments.OvernightSwap(instruments.OisEonia, "5Y", "EUR-OIS-5Y"),
					instruments.OvernightSwap(instruments.OisEonia, "7Y", "EUR-OIS-7Y"),
					instruments.OvernightSwap(instruments.OisEonia, "10Y", "EUR-OIS-10Y"),
				}},
				DiscountCurrencies: []market.Currency{market.EUR},
				ForwardIndices:     []market.Index{market.EONIA},
			},
			{
				Curve: curve.Definition{Name: "EURIBOR-3M", Nodes: []curve.Node{
					instruments.IborFixing(market.EURIBOR3M, "EUR-EURIBOR-3M"),
					instruments.Fra(market.EURIBOR3M, 3, 6, "EUR-FRA-3X6"),
					instruments.Fra(market.EURIBOR3M, 6, 9, "EUR-FRA-6X9"),
					instruments.FixedIborSwap(instruments.IrsEuribor3M, "2Y", "EUR-IRS3M-2Y"),
					instruments.FixedIborSwap(instruments.IrsEuribor3M, "5Y", "EUR-IRS3M-5Y"),
					instruments.FixedIborSwap(instruments.IrsEuribor3M, "10Y", "EUR-IRS3M-10Y"),
				}},
				ForwardIndices: []market.Index{market.EURIBOR3M},
			},
			{
				Curve: curve.Definition{Name: "EURIBOR-6M", Nodes: []curve.Node{
					instruments.IborFixing(market.EURIBOR6M, "EUR-EURIBOR-6M"),
					instruments.FixedIborSwap(instruments.IrsEuribor6M, "2Y", "EUR-IRS6M-2Y"),
					instruments.FixedIborSwap(instruments.IrsEuribor6M, "5Y", "EUR-IRS6M-5Y"),
					instruments.FixedIborSwap(instruments.IrsEuribor6M, "10Y", "EUR-IRS6M-10Y"),
				}},
				ForwardIndices: []market.Index{market.EURIBOR6M},
			},
		},
	}

	now := time.Now().UTC()
	valuation := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	provider, err := calibrate.Calibrate(context.Background(), group, valuation, quotes, nil, market.FxMatrix{})
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	diag := provider.Diagnostics()
	fmt.Printf("calibrated %s in %d iterations, residual %.2e, %s\n",
		group.Name, diag.Iterations, diag.ResidualNorm, diag.Elapsed.Round(time.Millisecond))

	for _, years := range []int{1, 2, 5, 10} {
		date := valuation.AddDate(years, 0, 0)
		df, _ := provider.DiscountFactor(market.EUR, date)
		zero, _ := provider.ZeroRate(market.EUR, date)
		fmt.Printf("%2dY  df %.6f  zero %.4f%%\n", years, df, zero*100)
	}

	fwdDate := valuation.AddDate(1, 0, 0)
	fwd3m, _ := provider.ForwardRate(market.EURIBOR3M, fwdDate)
	fwd6m, _ := provider.ForwardRate(market.EURIBOR6M, fwdDate)
	fmt.Printf("1Y forward  EURIBOR3M %.4f%%  EURIBOR6M %.4f%%\n", fwd3m*100, fwd6m*100)
}
