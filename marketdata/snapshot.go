package marketdata

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/multicurve/market"
)

// QuoteRecord is one observed quote as it moves through files, stores
// and feeds. The value stays decimal until a snapshot is built, so
// every digit read from a file or feed survives the trip.
type QuoteRecord struct {
	Key   market.QuoteKey
	Value decimal.Decimal
	AsOf  time.Time
}

// Snapshot is an immutable quote set handed to the calibrator. Quotes
// are plain decimal rates, 0.0125 meaning 1.25 percent.
type Snapshot struct {
	quotes map[market.QuoteKey]float64
}

// NewSnapshot copies the quote map. Later mutations of the argument do
// not reach the snapshot.
func NewSnapshot(quotes map[market.QuoteKey]float64) *Snapshot {
	out := make(map[market.QuoteKey]float64, len(quotes))
	for k, v := range quotes {
		out[k] = v
	}
	return &Snapshot{quotes: out}
}

// BuildSnapshot converts records to the float64 form the calibrator
// consumes. When a key appears more than once the record with the
// latest as-of timestamp wins, later records breaking ties.
func BuildSnapshot(records []QuoteRecord) (*Snapshot, error) {
	quotes := make(map[market.QuoteKey]float64, len(records))
	asOf := make(map[market.QuoteKey]time.Time, len(records))
	for i, rec := range records {
		if rec.Key == "" {
			return nil, fmt.Errorf("BuildSnapshot: record %d has no key", i)
		}
		if prev, seen := asOf[rec.Key]; seen && rec.AsOf.Before(prev) {
			continue
		}
		v, _ := rec.Value.Float64()
		quotes[rec.Key] = v
		asOf[rec.Key] = rec.AsOf
	}
	return &Snapshot{quotes: quotes}, nil
}

// Value reports the quote stored under the key.
func (s *Snapshot) Value(key market.QuoteKey) (float64, bool) {
	v, ok := s.quotes[key]
	return v, ok
}

// Len returns the number of quotes.
func (s *Snapshot) Len() int { return len(s.quotes) }

// Keys returns the quote keys in sorted order.
func (s *Snapshot) Keys() []market.QuoteKey {
	keys := make([]market.QuoteKey, 0, len(s.quotes))
	for k := range s.quotes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
