package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

type fakeSink struct {
	mu        sync.Mutex
	delivered []*models.Delivery
	err       error
}

func (f *fakeSink) Deliver(_ context.Context, d *models.Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, d)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

type fakeMetrics struct {
	mu      sync.Mutex
	errors  map[string]int
	symbols map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, symbols: map[string]int{}}
}

func (m *fakeMetrics) RecordRun(string) {}
func (m *fakeMetrics) RecordSymbol(symbol, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[symbol+"/"+result]++
}
func (m *fakeMetrics) RecordZones(string, int, int)     {}
func (m *fakeMetrics) RecordLastPrice(string, float64)  {}
func (m *fakeMetrics) RecordLatency(string, float64)    {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func delivery(symbol, fp string) *models.Delivery {
	return &models.Delivery{
		RunID:       "run-1",
		Symbol:      symbol,
		Variant:     models.VariantSwing,
		Fingerprint: fp,
		Payload:     []byte(`{"symbol":"` + symbol + `"}`),
	}
}

func TestProcessDeliversAndDedupes(t *testing.T) {
	sink := &fakeSink{}
	p := NewDeliveryPipeline(sink, newFakeMetrics())

	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	assert.Equal(t, 1, sink.count())

	// identical fingerprint is suppressed
	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	assert.Equal(t, 1, sink.count())

	// new fingerprint goes through
	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "bbb")))
	assert.Equal(t, 2, sink.count())
}

func TestProcessKeysDedupePerSymbolVariant(t *testing.T) {
	sink := &fakeSink{}
	p := NewDeliveryPipeline(sink, newFakeMetrics())

	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))

	other := delivery("ETHUSDT", "aaa")
	require.NoError(t, p.Process(context.Background(), other))
	assert.Equal(t, 2, sink.count())

	full := delivery("BTCUSDT", "aaa")
	full.Variant = models.VariantFull
	require.NoError(t, p.Process(context.Background(), full))
	assert.Equal(t, 3, sink.count())
}

func TestProcessForceIntervalRedelivers(t *testing.T) {
	sink := &fakeSink{}
	p := NewDeliveryPipeline(sink, newFakeMetrics(), WithForceInterval(10*time.Millisecond))

	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	assert.Equal(t, 1, sink.count())

	time.Sleep(15 * time.Millisecond)
	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	assert.Equal(t, 2, sink.count())
}

func TestProcessBuffersOnSinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("downstream down")}
	m := newFakeMetrics()
	p := NewDeliveryPipeline(sink, m, WithBufferSize(4))

	err := p.Process(context.Background(), delivery("BTCUSDT", "aaa"))
	require.Error(t, err)
	assert.Len(t, p.bufCh, 1)
	assert.Equal(t, 1, m.errorCount("pipeline_deliver"))

	// a failed delivery is not remembered; the retry is not suppressed
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	require.NoError(t, p.Process(context.Background(), delivery("BTCUSDT", "aaa")))
	assert.Equal(t, 1, sink.count())
}

func TestProcessRejectsInvalidDelivery(t *testing.T) {
	sink := &fakeSink{}
	m := newFakeMetrics()
	p := NewDeliveryPipeline(sink, m)

	assert.Error(t, p.Process(context.Background(), nil))
	assert.Error(t, p.Process(context.Background(), &models.Delivery{Symbol: "BTCUSDT"}))
	assert.Equal(t, 0, sink.count())
	assert.Equal(t, 2, m.errorCount("pipeline_validate"))
}

func TestStartFlushesBufferedDeliveries(t *testing.T) {
	sink := &fakeSink{err: errors.New("downstream down")}
	p := NewDeliveryPipeline(sink, newFakeMetrics(), WithBufferSize(4))

	_ = p.Process(context.Background(), delivery("BTCUSDT", "aaa"))
	require.Len(t, p.bufCh, 1)

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return sink.count() == 1 },
		time.Second, 10*time.Millisecond)
}
