package market

import (
	"fmt"
	"time"

	"github.com/meenmo/multicurve/utils"
)

// DayCount selects a year fraction convention.
type DayCount string

const (
	Act360   DayCount = "ACT/360"
	Act365F  DayCount = "ACT/365F"
	Dc30360  DayCount = "30/360"
	Dc30E360 DayCount = "30E/360"
)

// YearFraction computes the accrual fraction between two dates.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	return utils.YearFraction(start, end, string(dc))
}

// Validate rejects conventions utils.YearFraction does not implement, so
// typos in config files fail at load time rather than silently falling back.
func (dc DayCount) Validate() error {
	switch dc {
	case Act360, Act365F, Dc30360, Dc30E360:
		return nil
	}
	return fmt.Errorf("DayCount: unknown convention %q", string(dc))
}
