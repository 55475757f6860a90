package repository

import (
	"context"

	"StructSnap/internal/domain/models"
)

// CandleSource fetches ordered, deduplicated candle history for one
// (symbol, timeframe) pair. Implementations must return series sorted
// ascending by timestamp; transport failures wrap models.ErrSourceUnavailable.
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol string, tf models.Timeframe, lookback int) (*models.Series, error)
}

// PriceSource provides the latest price for a symbol (mark price when the
// derivatives stream is connected, last close otherwise).
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// SnapshotStore appends each run's snapshot to durable versioned storage so
// downstream consumers can diff runs. The core never reads "latest" from it.
type SnapshotStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, runID string, variant models.Variant, snap *models.Snapshot, payload []byte) error
	Health(ctx context.Context) error
	Close() error
}

// LatestStore holds the mutable "latest snapshot" pointer per (symbol,
// variant), outside the core. A failed symbol leaves its previous value
// untouched.
type LatestStore interface {
	SetLatest(ctx context.Context, symbol string, variant models.Variant, payload []byte) error
	GetLatest(ctx context.Context, symbol string, variant models.Variant) ([]byte, error)
	SetReport(ctx context.Context, symbol string, report string) error
	GetReport(ctx context.Context, symbol string) (string, error)
	Close() error
}

// Publisher pushes serialized snapshots to the message bus, keyed by symbol.
type Publisher interface {
	Publish(ctx context.Context, symbol string, variant models.Variant, payload []byte) error
	Close() error
}

// Metrics is the pipeline metrics surface.
type Metrics interface {
	RecordRun(result string)
	RecordSymbol(symbol, result string)
	RecordZones(symbol string, built, dropped int)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
