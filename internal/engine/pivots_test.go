package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func TestDetectPivotsSwingHigh(t *testing.T) {
	s := barsToSeries(models.TFD1, barsFromCloses([]float64{10, 11, 15, 11, 10}))
	pivots := DetectPivots(s, 2)

	var highs []models.Pivot
	for _, p := range pivots {
		if p.Kind == models.PivotHigh {
			highs = append(highs, p)
		}
	}
	require.Len(t, highs, 1)
	assert.Equal(t, 15.5, highs[0].Price)
	assert.Equal(t, s.Candles[2].Timestamp, highs[0].Timestamp)
	assert.Equal(t, 2, highs[0].Strength)
}

func TestDetectPivotsSwingLow(t *testing.T) {
	s := barsToSeries(models.TFD1, barsFromCloses([]float64{20, 18, 12, 18, 20}))
	pivots := DetectPivots(s, 2)

	var lows []models.Pivot
	for _, p := range pivots {
		if p.Kind == models.PivotLow {
			lows = append(lows, p)
		}
	}
	require.Len(t, lows, 1)
	assert.Equal(t, 11.5, lows[0].Price)
}

func TestDetectPivotsPlateauResolvesEarliest(t *testing.T) {
	s := barsToSeries(models.TFD1, barsFromCloses([]float64{10, 15, 15, 10}))
	pivots := DetectPivots(s, 1)

	var highs []models.Pivot
	for _, p := range pivots {
		if p.Kind == models.PivotHigh {
			highs = append(highs, p)
		}
	}
	require.Len(t, highs, 1)
	assert.Equal(t, s.Candles[1].Timestamp, highs[0].Timestamp)
}

func TestDetectPivotsShortSeries(t *testing.T) {
	s := barsToSeries(models.TFD1, barsFromCloses([]float64{10, 11, 12}))
	assert.Nil(t, DetectPivots(s, 2))
	assert.Nil(t, DetectPivots(s, 0))
}

func TestPivotStrengthCapped(t *testing.T) {
	// long flat run around one spike: no dominating candle inside the
	// window on either side, strength saturates at the window size
	closes := make([]float64, 21)
	for i := range closes {
		closes[i] = 10
	}
	closes[10] = 20
	s := barsToSeries(models.TFD1, barsFromCloses(closes))

	pivots := DetectPivots(s, 7)
	var spike *models.Pivot
	for i, p := range pivots {
		if p.Kind == models.PivotHigh && p.Price == 20.5 {
			spike = &pivots[i]
		}
	}
	require.NotNil(t, spike)
	assert.Equal(t, maxPivotStrength, spike.Strength)
}
