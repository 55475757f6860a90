package engine

import (
	"fmt"

	"StructSnap/internal/domain/models"
)

// TrueRanges returns the true range for every candle. The first candle has no
// previous close, so its TR is just high-low.
func TrueRanges(candles []models.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	trs := make([]float64, len(candles))
	trs[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		hl := candles[i].High - candles[i].Low
		hc := abs(candles[i].High - candles[i-1].Close)
		lc := abs(candles[i].Low - candles[i-1].Close)
		trs[i] = max3(hl, hc, lc)
	}
	return trs
}

// ATR returns the simple moving average of the true range over the trailing n
// candles. Fewer than n candles is an error wrapping ErrInsufficientHistory.
func ATR(candles []models.Candle, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("atr: invalid period %d", n)
	}
	if len(candles) < n {
		return 0, fmt.Errorf("atr: need %d candles, have %d: %w",
			n, len(candles), models.ErrInsufficientHistory)
	}
	trs := TrueRanges(candles)
	sum := 0.0
	for _, tr := range trs[len(trs)-n:] {
		sum += tr
	}
	return sum / float64(n), nil
}

// atrBaseline is the mean true range over a longer trailing window, used as
// the reference level for volatility-compression checks.
func atrBaseline(candles []models.Candle, lookback int) (float64, error) {
	if len(candles) < lookback {
		return 0, fmt.Errorf("atr baseline: need %d candles, have %d: %w",
			lookback, len(candles), models.ErrInsufficientHistory)
	}
	trs := TrueRanges(candles)
	sum := 0.0
	for _, tr := range trs[len(trs)-lookback:] {
		sum += tr
	}
	return sum / float64(lookback), nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
