package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StructSnap/internal/domain/models"
	drepo "StructSnap/internal/domain/repository"
	"StructSnap/internal/service/ratelimit"
	pkghttp "StructSnap/pkg/http"
)

// klines responses carry at most this many rows per request.
const maxKlinesPerRequest = 1000

var intervals = map[models.Timeframe]string{
	models.TFH1: "1h",
	models.TFH4: "4h",
	models.TFD1: "1d",
	models.TFW1: "1w",
}

// RestClient implements CandleSource on the Binance klines endpoint.
// Lookbacks beyond the per-request cap paginate backwards by endTime.
type RestClient struct {
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	baseURL string
	// token bucket tuning for the shared klines weight
	rlCapacity float64
	rlRefill   float64
}

type RestOption func(*RestClient)

// WithBaseURL overrides the API host (testnet, futures API).
func WithBaseURL(u string) RestOption {
	return func(c *RestClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRateLimit tunes the request token bucket.
func WithRateLimit(capacity, refillPerSec float64) RestOption {
	return func(c *RestClient) {
		if capacity > 0 && refillPerSec > 0 {
			c.rlCapacity = capacity
			c.rlRefill = refillPerSec
		}
	}
}

// NewRestClient creates a klines candle source.
func NewRestClient(httpClient *pkghttp.Client, limiter *ratelimit.Limiter, opts ...RestOption) drepo.CandleSource {
	c := &RestClient{
		http:       httpClient,
		limiter:    limiter,
		baseURL:    "https://api.binance.com",
		rlCapacity: 10,
		rlRefill:   5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCandles pulls up to lookback closed candles, oldest first. Any
// transport or decode failure wraps ErrSourceUnavailable so the caller can
// skip the symbol and keep the previous snapshot live.
func (c *RestClient) FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, lookback int) (*models.Series, error) {
	interval, ok := intervals[tf]
	if !ok {
		return nil, fmt.Errorf("unsupported timeframe %s", tf)
	}
	if lookback <= 0 {
		lookback = maxKlinesPerRequest
	}

	var candles []models.Candle
	var endTime int64
	for len(candles) < lookback {
		limit := lookback - len(candles)
		if limit > maxKlinesPerRequest {
			limit = maxKlinesPerRequest
		}
		page, err := c.fetchPage(ctx, symbol, interval, limit, endTime)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		candles = append(page, candles...)
		endTime = page[0].Timestamp.UnixMilli() - 1
		if len(page) < limit {
			break
		}
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("klines %s %s: empty response: %w",
			symbol, tf, models.ErrSourceUnavailable)
	}

	s := &models.Series{Symbol: symbol, Timeframe: tf, Candles: candles}
	s.Normalize()
	// the newest bar may still be forming; snapshots only see closed candles
	if n := len(s.Candles); n > 0 {
		if s.Candles[n-1].Timestamp.Add(tf.Duration()).After(time.Now()) {
			s.Candles = s.Candles[:n-1]
		}
	}
	return s, nil
}

func (c *RestClient) fetchPage(ctx context.Context, symbol, interval string, limit int, endTime int64) ([]models.Candle, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	params := map[string][]string{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	if endTime > 0 {
		params["endTime"] = []string{strconv.FormatInt(endTime, 10)}
	}

	var rows [][]interface{}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/api/v3/klines",
		QueryParams: params,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w: %v",
			symbol, interval, models.ErrSourceUnavailable, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("klines %s %s: %w: %v",
				symbol, interval, models.ErrSourceUnavailable, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes one kline row: open time in ms, then OHLCV as strings.
func parseKline(row []interface{}) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("short kline row: %d fields", len(row))
	}
	openMs, ok := row[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("bad open time %T", row[0])
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("bad kline field %d: %T", i, row[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	return models.Candle{
		Timestamp: time.UnixMilli(int64(openMs)).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

// wait blocks until the token bucket allows one request or ctx expires.
func (c *RestClient) wait(ctx context.Context) error {
	for !c.limiter.Allow("klines", c.rlCapacity, c.rlRefill) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limit wait: %w", ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}
