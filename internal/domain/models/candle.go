package models

import (
	"sort"
	"time"
)

// Timeframe represents candle resolution buckets used by the engine.
type Timeframe string

const (
	TFH1 Timeframe = "H1"
	TFH4 Timeframe = "H4"
	TFD1 Timeframe = "D1"
	TFW1 Timeframe = "W1"
)

// Duration returns the nominal bar duration. Weekly bars use 7 calendar days;
// consumers must tolerate irregular spacing anyway.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TFH1:
		return time.Hour
	case TFH4:
		return 4 * time.Hour
	case TFD1:
		return 24 * time.Hour
	case TFW1:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Candle represents a single OHLCV record. Timestamp is the bar open time in UTC.
// Immutable once ingested.
type Candle struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    float64   `json:"v"`
}

// Series is an ordered candle sequence for one (symbol, timeframe) pair.
// Candles are ascending by timestamp after Normalize; read-only downstream.
type Series struct {
	Symbol    string    `json:"symbol"`
	Timeframe Timeframe `json:"timeframe"`
	Candles   []Candle  `json:"candles"`
}

// Normalize sorts candles ascending by timestamp and drops duplicate
// timestamps keeping the first occurrence. Safe to call on an empty series.
func (s *Series) Normalize() {
	sort.SliceStable(s.Candles, func(i, j int) bool {
		return s.Candles[i].Timestamp.Before(s.Candles[j].Timestamp)
	})
	out := s.Candles[:0]
	var last time.Time
	for i, c := range s.Candles {
		if i > 0 && c.Timestamp.Equal(last) {
			continue
		}
		out = append(out, c)
		last = c.Timestamp
	}
	s.Candles = out
}

// Len returns the number of candles.
func (s *Series) Len() int { return len(s.Candles) }

// LastClose returns the close of the most recent candle, or 0 for an empty series.
func (s *Series) LastClose() float64 {
	if len(s.Candles) == 0 {
		return 0
	}
	return s.Candles[len(s.Candles)-1].Close
}

// LastTimestamp returns the open time of the most recent candle.
func (s *Series) LastTimestamp() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Timestamp
}

// Tail returns the trailing n candles (the whole series when shorter).
func (s *Series) Tail(n int) []Candle {
	if n <= 0 || len(s.Candles) == 0 {
		return nil
	}
	if len(s.Candles) <= n {
		return s.Candles
	}
	return s.Candles[len(s.Candles)-n:]
}
