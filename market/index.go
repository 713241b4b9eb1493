package market

import "fmt"

// Index names a floating rate index.
type Index string

const (
	EONIA     Index = "EONIA"
	ESTR      Index = "ESTR"
	SOFR      Index = "SOFR"
	EURIBOR3M Index = "EURIBOR3M"
	EURIBOR6M Index = "EURIBOR6M"
)

// IsOvernight reports whether the index is an overnight rate.
func (i Index) IsOvernight() bool {
	switch i {
	case EONIA, ESTR, SOFR:
		return true
	}
	return false
}

// Currency returns the index's home currency.
func (i Index) Currency() Currency {
	switch i {
	case SOFR:
		return USD
	default:
		return EUR
	}
}

// TenorMonths returns the deposit tenor underlying the index, 0 for
// overnight indices.
func (i Index) TenorMonths() int {
	switch i {
	case EURIBOR3M:
		return 3
	case EURIBOR6M:
		return 6
	}
	return 0
}

// DayCount returns the accrual convention of the index's deposits.
func (i Index) DayCount() DayCount {
	return Act360
}

// Validate rejects indices the engine has no conventions for.
func (i Index) Validate() error {
	switch i {
	case EONIA, ESTR, SOFR, EURIBOR3M, EURIBOR6M:
		return nil
	}
	return fmt.Errorf("Index: unknown index %q", string(i))
}
