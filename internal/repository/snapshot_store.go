package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/domain/repository"
)

// ClickHouseSnapshotStore implements SnapshotStore on ClickHouse. Every run
// appends one row per (symbol, variant); nothing is ever updated in place, so
// downstream consumers can diff runs by generated_at.
type ClickHouseSnapshotStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseSnapshotStore creates the versioned snapshot store.
func NewClickHouseSnapshotStore(db *sql.DB, table string) repository.SnapshotStore {
	if table == "" {
		table = "zone_snapshots"
	}
	return &ClickHouseSnapshotStore{db: db, table: table}
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    run_id       String,
    symbol       LowCardinality(String),
    variant      LowCardinality(String),
    generated_at DateTime64(3, 'UTC'),
    as_of        DateTime64(3, 'UTC'),
    price        Float64,
    fingerprint  String,
    payload      String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(generated_at)
ORDER BY (symbol, variant, generated_at)
TTL toDateTime(generated_at) + INTERVAL 180 DAY`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init snapshot store: %w", err)
	}
	return nil
}

func (s *ClickHouseSnapshotStore) Append(ctx context.Context, runID string, variant models.Variant, snap *models.Snapshot, payload []byte) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (run_id, symbol, variant, generated_at, as_of, price, fingerprint, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.table)
	_, err := s.db.ExecContext(ctx, q,
		runID,
		snap.Symbol,
		string(variant),
		snap.GeneratedAt.UTC(),
		snap.AsOf.UTC(),
		snap.Price,
		snap.Fingerprint,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("append snapshot %s/%s: %w", snap.Symbol, variant, err)
	}
	return nil
}

func (s *ClickHouseSnapshotStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
