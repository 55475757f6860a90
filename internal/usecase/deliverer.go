package usecase

import (
	"context"
	"fmt"
	"time"

	"StructSnap/internal/domain/models"
	drepo "StructSnap/internal/domain/repository"
)

// SnapshotDeliverer fans one delivery out to the downstream sinks in order:
// versioned history first, then the latest pointer, then the bus. A failure
// anywhere surfaces to the pipeline middleware, which buffers and retries.
type SnapshotDeliverer struct {
	store   drepo.SnapshotStore
	latest  drepo.LatestStore
	pub     drepo.Publisher
	metrics drepo.Metrics
}

func NewSnapshotDeliverer(
	store drepo.SnapshotStore,
	latest drepo.LatestStore,
	pub drepo.Publisher,
	metrics drepo.Metrics,
) *SnapshotDeliverer {
	return &SnapshotDeliverer{store: store, latest: latest, pub: pub, metrics: metrics}
}

func (d *SnapshotDeliverer) Deliver(ctx context.Context, del *models.Delivery) error {
	start := time.Now()
	if d.store != nil {
		if err := d.store.Append(ctx, del.RunID, del.Variant, del.Snapshot, del.Payload); err != nil {
			d.metrics.RecordError("store_append")
			return fmt.Errorf("append snapshot: %w", err)
		}
	}
	if err := d.latest.SetLatest(ctx, del.Symbol, del.Variant, del.Payload); err != nil {
		d.metrics.RecordError("latest_set")
		return fmt.Errorf("set latest: %w", err)
	}
	if d.pub != nil {
		if err := d.pub.Publish(ctx, del.Symbol, del.Variant, del.Payload); err != nil {
			d.metrics.RecordError("publish")
			return fmt.Errorf("publish snapshot: %w", err)
		}
	}
	d.metrics.RecordLatency("deliver", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (d *SnapshotDeliverer) Close() {
	if d.pub != nil {
		_ = d.pub.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.latest != nil {
		_ = d.latest.Close()
	}
}
