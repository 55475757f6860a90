package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func TestATRConstantRange(t *testing.T) {
	s := barsToSeries(models.TFD1, flatBars(20, 11, 10, 10.5))
	atr, err := ATR(s.Candles, 14)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, atr, 1e-9)
}

func TestATRGapUsesPreviousClose(t *testing.T) {
	bars := []bar{
		{o: 10, h: 11, l: 10, c: 10.5},
		// gap up: true range measured from the previous close
		{o: 15, h: 15.5, l: 15, c: 15.2},
	}
	s := barsToSeries(models.TFD1, bars)
	trs := TrueRanges(s.Candles)
	require.Len(t, trs, 2)
	assert.InDelta(t, 1.0, trs[0], 1e-9)
	assert.InDelta(t, 5.0, trs[1], 1e-9) // |15.5 - 10.5|
}

func TestATRInsufficientHistory(t *testing.T) {
	s := barsToSeries(models.TFD1, flatBars(5, 11, 10, 10.5))
	_, err := ATR(s.Candles, 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestEMAConstantCloses(t *testing.T) {
	s := barsToSeries(models.TFD1, flatBars(250, 101, 99, 100))
	ema, err := EMA(s.Candles, 200)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, ema, 1e-9)
}

func TestEMASeriesSeededWithSMA(t *testing.T) {
	s := barsToSeries(models.TFD1, barsFromCloses([]float64{10, 20, 30, 40}))
	series, err := EMASeries(s.Candles, 3)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 20.0, series[0], 1e-9) // SMA(10,20,30)
	// alpha = 2/4; 0.5*40 + 0.5*20
	assert.InDelta(t, 30.0, series[1], 1e-9)
}

func TestEMAInsufficientHistory(t *testing.T) {
	s := barsToSeries(models.TFD1, flatBars(100, 101, 99, 100))
	_, err := EMA(s.Candles, 200)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}
