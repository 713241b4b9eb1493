package instruments

import (
	"fmt"

	"github.com/meenmo/multicurve/calendar"
	"github.com/meenmo/multicurve/market"
)

// FixedLeg describes the fixed side of a swap.
type FixedLeg struct {
	Currency   market.Currency
	DayCount   market.DayCount
	FreqMonths int
	Calendar   calendar.CalendarID
}

// FloatLeg describes the floating side of a swap. Overnight indices pay
// the compounded rate over each coupon period.
type FloatLeg struct {
	Index      market.Index
	DayCount   market.DayCount
	FreqMonths int
	Calendar   calendar.CalendarID
}

// SwapConvention groups the two legs of a vanilla swap with its spot lag.
type SwapConvention struct {
	SpotLagDays int
	Fixed       FixedLeg
	Float       FloatLeg
}

// DepositConvention covers cash deposits and index fixing instruments.
type DepositConvention struct {
	Index       market.Index
	SpotLagDays int
	Calendar    calendar.CalendarID
}

// FraConvention covers forward rate agreements on one index.
type FraConvention struct {
	Index       market.Index
	SpotLagDays int
	Calendar    calendar.CalendarID
}

// CdsConvention covers single-name CDS premium legs for survival curve
// calibration. Protection runs from the step-in date, one business day
// after valuation.
type CdsConvention struct {
	Currency     market.Currency
	RecoveryRate float64
	FreqMonths   int
	DayCount     market.DayCount
	Calendar     calendar.CalendarID
}

// Preset conventions for the supported markets.
var (
	// EUR OIS vs EONIA: annual ACT/360 both legs, TARGET, T+2.
	OisEonia = SwapConvention{
		SpotLagDays: 2,
		Fixed:       FixedLeg{Currency: market.EUR, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.TARGET},
		Float:       FloatLeg{Index: market.EONIA, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.TARGET},
	}

	// EUR OIS vs ESTR, identical mechanics to EONIA.
	OisEstr = SwapConvention{
		SpotLagDays: 2,
		Fixed:       FixedLeg{Currency: market.EUR, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.TARGET},
		Float:       FloatLeg{Index: market.ESTR, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.TARGET},
	}

	// USD OIS vs SOFR: annual ACT/360 both legs, New York, T+2.
	OisSofr = SwapConvention{
		SpotLagDays: 2,
		Fixed:       FixedLeg{Currency: market.USD, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.USNY},
		Float:       FloatLeg{Index: market.SOFR, DayCount: market.Act360, FreqMonths: 12, Calendar: calendar.USNY},
	}

	// EUR IRS: fixed annual 30/360 vs EURIBOR 3M quarterly ACT/360.
	IrsEuribor3M = SwapConvention{
		SpotLagDays: 2,
		Fixed:       FixedLeg{Currency: market.EUR, DayCount: market.Dc30360, FreqMonths: 12, Calendar: calendar.TARGET},
		Float:       FloatLeg{Index: market.EURIBOR3M, DayCount: market.Act360, FreqMonths: 3, Calendar: calendar.TARGET},
	}

	// EUR IRS: fixed annual 30/360 vs EURIBOR 6M semiannual ACT/360.
	IrsEuribor6M = SwapConvention{
		SpotLagDays: 2,
		Fixed:       FixedLeg{Currency: market.EUR, DayCount: market.Dc30360, FreqMonths: 12, Calendar: calendar.TARGET},
		Float:       FloatLeg{Index: market.EURIBOR6M, DayCount: market.Act360, FreqMonths: 6, Calendar: calendar.TARGET},
	}

	// EUR single-name CDS: quarterly premiums, ACT/360, 40% recovery.
	CdsEurQuarterly = CdsConvention{
		Currency:     market.EUR,
		RecoveryRate: 0.40,
		FreqMonths:   3,
		DayCount:     market.Act360,
		Calendar:     calendar.TARGET,
	}
)

// SwapConventionByName resolves the names used in group definition files.
func SwapConventionByName(name string) (SwapConvention, error) {
	switch name {
	case "EUR-OIS-EONIA":
		return OisEonia, nil
	case "EUR-OIS-ESTR":
		return OisEstr, nil
	case "USD-OIS-SOFR":
		return OisSofr, nil
	case "EUR-IRS-EURIBOR3M":
		return IrsEuribor3M, nil
	case "EUR-IRS-EURIBOR6M":
		return IrsEuribor6M, nil
	}
	return SwapConvention{}, fmt.Errorf("SwapConventionByName: unknown convention %q", name)
}

// CdsConventionByName resolves the names used in group definition files.
func CdsConventionByName(name string) (CdsConvention, error) {
	switch name {
	case "EUR-CDS-QUARTERLY":
		return CdsEurQuarterly, nil
	}
	return CdsConvention{}, fmt.Errorf("CdsConventionByName: unknown convention %q", name)
}

// DepositConventionFor builds the standard deposit convention of an index.
func DepositConventionFor(index market.Index) (DepositConvention, error) {
	if err := index.Validate(); err != nil {
		return DepositConvention{}, fmt.Errorf("DepositConventionFor: %w", err)
	}
	return DepositConvention{Index: index, SpotLagDays: 2, Calendar: calendarFor(index.Currency())}, nil
}

// FraConventionFor builds the standard FRA convention of an index.
func FraConventionFor(index market.Index) (FraConvention, error) {
	if err := index.Validate(); err != nil {
		return FraConvention{}, fmt.Errorf("FraConventionFor: %w", err)
	}
	return FraConvention{Index: index, SpotLagDays: 2, Calendar: calendarFor(index.Currency())}, nil
}

func calendarFor(ccy market.Currency) calendar.CalendarID {
	switch ccy {
	case market.USD:
		return calendar.USNY
	case market.GBP:
		return calendar.GBLO
	default:
		return calendar.TARGET
	}
}
