package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func TestBuildRangeContextBandsAndVol(t *testing.T) {
	p := DefaultParams()
	w1 := barsToSeries(models.TFW1, flatBars(60, 120, 80, 100))
	d1 := barsToSeries(models.TFD1, flatBars(260, 101, 99, 100))
	h4 := barsToSeries(models.TFH4, flatBars(300, 100.5, 99.5, 100))

	ctx := BuildRangeContext(w1, d1, h4, nil, nil, p)

	assert.Equal(t, 80.0, ctx.W1Low)
	assert.Equal(t, 120.0, ctx.W1High)
	assert.Equal(t, 100.0, ctx.Equilibrium)
	// thirds of the 80..120 range
	assert.InDelta(t, 80.0, ctx.DiscountBand.Low, 1e-9)
	assert.InDelta(t, 93.333333, ctx.DiscountBand.High, 1e-4)
	assert.InDelta(t, 106.666666, ctx.PremiumBand.Low, 1e-4)
	assert.InDelta(t, 120.0, ctx.PremiumBand.High, 1e-9)

	require.NotNil(t, ctx.ATRD1)
	assert.InDelta(t, 2.0, *ctx.ATRD1, 1e-9)
	require.NotNil(t, ctx.EMA200D1)
	assert.InDelta(t, 100.0, *ctx.EMA200D1, 1e-9)

	// ATR(D1)/price = 0.02, between the low and high cutoffs
	assert.Equal(t, models.VolNormal, ctx.VolFlagD1)
}

func TestBuildRangeContextRegimeTrend(t *testing.T) {
	p := DefaultParams()
	// steadily rising closes make the EMA slope dominate the ATR threshold
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100 + float64(i)*2
	}
	d1 := barsToSeries(models.TFD1, barsFromCloses(closes))

	ctx := BuildRangeContext(nil, d1, nil, nil, nil, p)
	assert.Equal(t, models.RegimeTrendUp, ctx.RegimeD1)
}

func TestBuildRangeContextRegimeChop(t *testing.T) {
	p := DefaultParams()
	d1 := barsToSeries(models.TFD1, flatBars(260, 101, 99, 100))
	// recent 4h true range far below the long baseline
	h4bars := flatBars(300, 102, 98, 100)
	for i := 280; i < 300; i++ {
		h4bars[i] = bar{o: 100, h: 100.1, l: 99.9, c: 100}
	}
	h4 := barsToSeries(models.TFH4, h4bars)

	ctx := BuildRangeContext(nil, d1, h4, nil, nil, p)
	assert.Equal(t, models.RegimeChop, ctx.RegimeD1)
}

func TestBuildRangeContextDegradesWithoutHistory(t *testing.T) {
	p := DefaultParams()
	d1 := barsToSeries(models.TFD1, flatBars(20, 101, 99, 100))

	ctx := BuildRangeContext(nil, d1, nil, nil, nil, p)

	assert.Nil(t, ctx.EMA200D1)
	assert.Equal(t, models.RegimeUnknown, ctx.RegimeD1)
	assert.Equal(t, models.RegimeUnknown, ctx.RegimeW1)
	require.NotNil(t, ctx.ATRD1)
	assert.Equal(t, models.VolNormal, ctx.VolFlagD1)
}

func TestBuildRangeContextStructureFlags(t *testing.T) {
	p := DefaultParams()
	d1 := barsToSeries(models.TFD1, flatBars(260, 101, 99, 100))
	pivots := []models.Pivot{
		pivotAt(models.TFD1, models.PivotHigh, 99.5, 10, 2),
		pivotAt(models.TFD1, models.PivotLow, 90.0, 20, 2),
	}

	ctx := BuildRangeContext(nil, d1, nil, nil, pivots, p)

	require.NotNil(t, ctx.StructureD1.LastSwingHigh)
	assert.Equal(t, 99.5, *ctx.StructureD1.LastSwingHigh)
	require.NotNil(t, ctx.StructureD1.LastSwingLow)
	assert.Equal(t, 90.0, *ctx.StructureD1.LastSwingLow)
	// last close 100 above the last swing high
	assert.True(t, ctx.StructureD1.CloseBreakUp)
	assert.False(t, ctx.StructureD1.CloseBreakDown)
}
