package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

type recordingStore struct {
	calls *[]string
	fail  bool
}

func (r *recordingStore) Init(context.Context) error { return nil }
func (r *recordingStore) Append(context.Context, string, models.Variant, *models.Snapshot, []byte) error {
	if r.fail {
		return fmt.Errorf("clickhouse down")
	}
	*r.calls = append(*r.calls, "store")
	return nil
}
func (r *recordingStore) Health(context.Context) error { return nil }
func (r *recordingStore) Close() error                 { return nil }

type recordingLatest struct {
	fakeLatestStore
	calls *[]string
}

func (r *recordingLatest) SetLatest(ctx context.Context, symbol string, variant models.Variant, payload []byte) error {
	*r.calls = append(*r.calls, "latest")
	return nil
}

type recordingPublisher struct {
	calls *[]string
}

func (r *recordingPublisher) Publish(context.Context, string, models.Variant, []byte) error {
	*r.calls = append(*r.calls, "publish")
	return nil
}
func (r *recordingPublisher) Close() error { return nil }

func testDelivery() *models.Delivery {
	return &models.Delivery{
		RunID:       "run-1",
		Symbol:      "BTCUSDT",
		Variant:     models.VariantSwing,
		Fingerprint: "abc",
		Snapshot:    testSnapshot(100),
		Payload:     []byte("{}"),
	}
}

func TestDeliverOrder(t *testing.T) {
	var calls []string
	d := NewSnapshotDeliverer(
		&recordingStore{calls: &calls},
		&recordingLatest{calls: &calls},
		&recordingPublisher{calls: &calls},
		nopMetrics{},
	)

	require.NoError(t, d.Deliver(context.Background(), testDelivery()))
	assert.Equal(t, []string{"store", "latest", "publish"}, calls)
}

func TestDeliverStoreFailureAborts(t *testing.T) {
	var calls []string
	d := NewSnapshotDeliverer(
		&recordingStore{calls: &calls, fail: true},
		&recordingLatest{calls: &calls},
		&recordingPublisher{calls: &calls},
		nopMetrics{},
	)

	err := d.Deliver(context.Background(), testDelivery())
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestDeliverWithoutOptionalSinks(t *testing.T) {
	var calls []string
	d := NewSnapshotDeliverer(nil, &recordingLatest{calls: &calls}, nil, nopMetrics{})

	require.NoError(t, d.Deliver(context.Background(), testDelivery()))
	assert.Equal(t, []string{"latest"}, calls)
}
