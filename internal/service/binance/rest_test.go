package binance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func klineRow(openMs float64, o, h, l, c, v string) []interface{} {
	return []interface{}{openMs, o, h, l, c, v}
}

func TestParseKline(t *testing.T) {
	open := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	row := klineRow(float64(open.UnixMilli()), "100.1", "105.5", "99.9", "104", "1234.5")

	candle, err := parseKline(row)
	require.NoError(t, err)
	assert.True(t, candle.Timestamp.Equal(open))
	assert.InDelta(t, 100.1, candle.Open, 1e-9)
	assert.InDelta(t, 105.5, candle.High, 1e-9)
	assert.InDelta(t, 99.9, candle.Low, 1e-9)
	assert.InDelta(t, 104.0, candle.Close, 1e-9)
	assert.InDelta(t, 1234.5, candle.Volume, 1e-9)
}

func TestParseKlineShortRow(t *testing.T) {
	_, err := parseKline([]interface{}{float64(0), "1", "2"})
	assert.Error(t, err)
}

func TestParseKlineBadFieldTypes(t *testing.T) {
	_, err := parseKline(klineRow(1.7e12, "100", "abc", "99", "100", "1"))
	assert.Error(t, err)

	row := klineRow(1.7e12, "100", "105", "99", "100", "1")
	row[0] = "not-a-number"
	_, err = parseKline(row)
	assert.Error(t, err)
}

func TestIntervalMapping(t *testing.T) {
	assert.Equal(t, "4h", intervals[models.TFH4])
	assert.Equal(t, "1d", intervals[models.TFD1])
	assert.Equal(t, "1w", intervals[models.TFW1])
	_, ok := intervals[models.Timeframe("M1")]
	assert.False(t, ok)
}

func TestMarkPriceParse(t *testing.T) {
	v, err := parsePrice("65123.45")
	require.NoError(t, err)
	assert.InDelta(t, 65123.45, v, 1e-9)

	_, err = parsePrice("-1")
	assert.Error(t, err)
	_, err = parsePrice("zzz")
	assert.Error(t, err)
}
