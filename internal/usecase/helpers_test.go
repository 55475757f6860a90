package usecase

import (
	"time"

	"StructSnap/internal/domain/models"
	"StructSnap/pkg/logger"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *logger.Logger {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

// h4Series builds an oscillating 4h series with clear swing lows at lowPrice
// and swing highs at highPrice so both sides produce zones.
func h4Series(n int, base, lowPrice, highPrice float64) *models.Series {
	s := &models.Series{Symbol: "BTCUSDT", Timeframe: models.TFH4}
	for i := 0; i < n; i++ {
		c := models.Candle{
			Timestamp: testEpoch.Add(time.Duration(i) * models.TFH4.Duration()),
			Open:      base, High: base + 0.5, Low: base - 0.5, Close: base,
			Volume: 1,
		}
		switch i % 10 {
		case 3:
			c.Low = lowPrice
		case 7:
			c.High = highPrice
		}
		s.Candles = append(s.Candles, c)
	}
	return s
}

func testZone(side models.Side, coreLow, coreHigh float64) models.Zone {
	return models.Zone{
		Tier:       models.TierOperational,
		Side:       side,
		Core:       models.Interval{Low: coreLow, High: coreHigh},
		Buffer:     models.Interval{Low: coreLow - 1, High: coreHigh + 1},
		Character:  models.CharacterUnknown,
		Strength:   3,
		PivotCount: 2,
		Stats: models.ZoneStats{
			Tests: 2, Reactions: 1, ReactionRate: 0.5,
		},
	}
}

func testSnapshot(price float64) *models.Snapshot {
	s := &models.Snapshot{
		Symbol:      "BTCUSDT",
		GeneratedAt: testEpoch.Add(100 * time.Hour),
		AsOf:        testEpoch.Add(96 * time.Hour),
		Price:       price,
		Supports:    []models.Zone{testZone(models.SideSupport, 95, 96)},
		Resistances: []models.Zone{testZone(models.SideResistance, 104, 105)},
	}
	s.AllZones = append(append([]models.Zone{}, s.Supports...), s.Resistances...)
	fp, err := Fingerprint(s)
	if err != nil {
		panic(err)
	}
	s.Fingerprint = fp
	return s
}
