package engine

import (
	"fmt"

	"StructSnap/internal/domain/models"
)

// EMASeries computes an exponential moving average over candle closes. The
// first value is seeded with the SMA of the first period closes, so the
// returned slice starts at candle index period-1 and has len(candles)-period+1
// entries. Fewer candles than the period is an InsufficientHistory error.
func EMASeries(candles []models.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: invalid period %d", period)
	}
	if len(candles) < period {
		return nil, fmt.Errorf("ema: need %d candles, have %d: %w",
			period, len(candles), models.ErrInsufficientHistory)
	}
	out := make([]float64, 0, len(candles)-period+1)
	seed := 0.0
	for _, c := range candles[:period] {
		seed += c.Close
	}
	ema := seed / float64(period)
	out = append(out, ema)
	alpha := 2.0 / (float64(period) + 1.0)
	for _, c := range candles[period:] {
		ema = alpha*c.Close + (1-alpha)*ema
		out = append(out, ema)
	}
	return out, nil
}

// EMA returns the latest EMA value.
func EMA(candles []models.Candle, period int) (float64, error) {
	series, err := EMASeries(candles, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// emaSlope returns the change of the EMA over the trailing bars window.
func emaSlope(series []float64, bars int) (float64, error) {
	if bars <= 0 || len(series) <= bars {
		return 0, fmt.Errorf("ema slope: need %d values, have %d: %w",
			bars+1, len(series), models.ErrInsufficientHistory)
	}
	return series[len(series)-1] - series[len(series)-1-bars], nil
}
