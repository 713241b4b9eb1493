package market

import (
	"sort"
	"time"
)

// Fixing is one published index observation.
type Fixing struct {
	Date time.Time
	Rate float64
}

// FixingSeries is an immutable, date-sorted history of published fixings
// for one index. Instruments whose first accrual period has already fixed
// read it instead of the forward curve.
type FixingSeries struct {
	fixings []Fixing
}

// NewFixingSeries copies the observations, truncating every date to a UTC
// calendar day.
func NewFixingSeries(obs map[time.Time]float64) FixingSeries {
	s := FixingSeries{fixings: make([]Fixing, 0, len(obs))}
	for d, r := range obs {
		s.fixings = append(s.fixings, Fixing{Date: dateOnly(d), Rate: r})
	}
	sort.Slice(s.fixings, func(i, j int) bool { return s.fixings[i].Date.Before(s.fixings[j].Date) })
	return s
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RateOn returns the fixing published on the given date, if any.
func (s FixingSeries) RateOn(date time.Time) (float64, bool) {
	d := dateOnly(date)
	i := sort.Search(len(s.fixings), func(i int) bool {
		return !s.fixings[i].Date.Before(d)
	})
	if i < len(s.fixings) && s.fixings[i].Date.Equal(d) {
		return s.fixings[i].Rate, true
	}
	return 0, false
}

// Latest returns the most recent fixing.
func (s FixingSeries) Latest() (Fixing, bool) {
	if len(s.fixings) == 0 {
		return Fixing{}, false
	}
	return s.fixings[len(s.fixings)-1], true
}

// Len returns the number of observations.
func (s FixingSeries) Len() int {
	return len(s.fixings)
}
