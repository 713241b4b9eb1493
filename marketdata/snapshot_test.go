package marketdata_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/multicurve/market"
	"github.com/meenmo/multicurve/marketdata"
)

func TestNewSnapshotCopies(t *testing.T) {
	t.Parallel()

	quotes := map[market.QuoteKey]float64{"EUR-OIS-1Y": 0.01, "EUR-OIS-2Y": 0.015}
	snap := marketdata.NewSnapshot(quotes)
	quotes["EUR-OIS-1Y"] = 99

	v, ok := snap.Value("EUR-OIS-1Y")
	require.True(t, ok)
	assert.Equal(t, 0.01, v)

	_, ok = snap.Value("EUR-OIS-5Y")
	assert.False(t, ok)
	assert.Equal(t, 2, snap.Len())
}

func TestSnapshotKeysSorted(t *testing.T) {
	t.Parallel()

	snap := marketdata.NewSnapshot(map[market.QuoteKey]float64{
		"EUR-OIS-2Y":  0.015,
		"EUR-DEPO-3M": 0.0188,
		"EUR-OIS-1Y":  0.01,
	})
	assert.Equal(t, []market.QuoteKey{"EUR-DEPO-3M", "EUR-OIS-1Y", "EUR-OIS-2Y"}, snap.Keys())
}

func TestBuildSnapshotLatestWins(t *testing.T) {
	t.Parallel()

	d := decimal.RequireFromString
	monday := time.Date(2026, 7, 13, 11, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 7, 14, 11, 0, 0, 0, time.UTC)

	snap, err := marketdata.BuildSnapshot([]marketdata.QuoteRecord{
		{Key: "EUR-OIS-1Y", Value: d("0.0125"), AsOf: tuesday},
		{Key: "EUR-OIS-1Y", Value: d("0.0120"), AsOf: monday},
		{Key: "EUR-OIS-2Y", Value: d("0.0140"), AsOf: monday},
		{Key: "EUR-OIS-2Y", Value: d("0.0141"), AsOf: monday},
	})
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	v, ok := snap.Value("EUR-OIS-1Y")
	require.True(t, ok)
	assert.Equal(t, 0.0125, v, "older monday record must not shadow tuesday")

	v, ok = snap.Value("EUR-OIS-2Y")
	require.True(t, ok)
	assert.Equal(t, 0.0141, v, "equal timestamps resolve to the later record")
}

func TestBuildSnapshotRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	_, err := marketdata.BuildSnapshot([]marketdata.QuoteRecord{
		{Key: "", Value: decimal.RequireFromString("0.01")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key")
}
