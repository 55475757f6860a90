package engine

import (
	"time"

	"StructSnap/internal/domain/models"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type bar struct {
	o, h, l, c float64
}

func barsToSeries(tf models.Timeframe, bars []bar) *models.Series {
	s := &models.Series{Symbol: "BTCUSDT", Timeframe: tf}
	for i, b := range bars {
		s.Candles = append(s.Candles, models.Candle{
			Timestamp: testEpoch.Add(time.Duration(i) * tf.Duration()),
			Open:      b.o,
			High:      b.h,
			Low:       b.l,
			Close:     b.c,
			Volume:    1,
		})
	}
	return s
}

// flatBars builds n identical candles, handy when only the count matters.
func flatBars(n int, high, low, close float64) []bar {
	out := make([]bar, n)
	for i := range out {
		out[i] = bar{o: close, h: high, l: low, c: close}
	}
	return out
}

// barsFromCloses builds candles with a small fixed wick around each close.
func barsFromCloses(closes []float64) []bar {
	out := make([]bar, len(closes))
	for i, c := range closes {
		out[i] = bar{o: c, h: c + 0.5, l: c - 0.5, c: c}
	}
	return out
}

func pivotAt(tf models.Timeframe, kind models.PivotKind, price float64, idx, strength int) models.Pivot {
	return models.Pivot{
		Timeframe: tf,
		Kind:      kind,
		Price:     price,
		Timestamp: testEpoch.Add(time.Duration(idx) * tf.Duration()),
		Strength:  strength,
	}
}
