package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StructSnap/internal/domain/models"
	domrepo "StructSnap/internal/domain/repository"
)

// Sink is the downstream the pipeline feeds (bus + stores).
type Sink interface {
	Deliver(ctx context.Context, d *models.Delivery) error
}

// DeliveryPipeline sits between the snapshot builder and the sinks.
// It validates, deduplicates unchanged snapshots by fingerprint, and buffers
// deliveries when downstream is unavailable.
type DeliveryPipeline struct {
	sink    Sink
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.Delivery
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// per (symbol, variant) fingerprint and time of the last delivery
	lastFP map[string]string
	lastAt map[string]time.Time
	// unchanged snapshots are re-delivered after this long anyway
	forceAfter time.Duration
}

type PipelineOption func(*DeliveryPipeline)

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *DeliveryPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithForceInterval sets how long a fingerprint-identical snapshot may be
// suppressed before it is delivered again.
func WithForceInterval(d time.Duration) PipelineOption {
	return func(p *DeliveryPipeline) {
		if d > 0 {
			p.forceAfter = d
		}
	}
}

// NewDeliveryPipeline creates a new pipeline.
func NewDeliveryPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *DeliveryPipeline {
	p := &DeliveryPipeline{
		sink:       sink,
		metrics:    metrics,
		bufSize:    256,
		bufCh:      make(chan *models.Delivery, 256),
		stopCh:     make(chan struct{}),
		lastFP:     make(map[string]string),
		lastAt:     make(map[string]time.Time),
		forceAfter: 6 * time.Hour,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Delivery, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered deliveries.
func (p *DeliveryPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case d := <-p.bufCh:
				if d == nil {
					continue
				}
				if err := p.sink.Deliver(ctx, d); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- d:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *DeliveryPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and forwards one delivery, buffering on sink errors.
// A delivery whose fingerprint matches the previous one for the same
// (symbol, variant) is suppressed until the force interval elapses.
func (p *DeliveryPipeline) Process(ctx context.Context, d *models.Delivery) error {
	start := time.Now()
	if err := validateDelivery(d); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.suppressed(d, start) {
		p.metrics.RecordSymbol(d.Symbol, "unchanged")
		return nil
	}

	if err := p.sink.Deliver(ctx, d); err != nil {
		p.metrics.RecordError("pipeline_deliver")
		select {
		case p.bufCh <- d:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.remember(d, start)
	p.metrics.RecordLatency("pipeline_deliver", time.Since(start).Seconds())
	return nil
}

func validateDelivery(d *models.Delivery) error {
	if d == nil {
		return fmt.Errorf("delivery nil")
	}
	if d.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if d.Fingerprint == "" {
		return fmt.Errorf("fingerprint empty")
	}
	if len(d.Payload) == 0 {
		return fmt.Errorf("payload empty")
	}
	return nil
}

func deliveryKey(d *models.Delivery) string {
	return d.Symbol + "/" + string(d.Variant)
}

func (p *DeliveryPipeline) suppressed(d *models.Delivery, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := deliveryKey(d)
	if p.lastFP[key] != d.Fingerprint {
		return false
	}
	return now.Sub(p.lastAt[key]) < p.forceAfter
}

func (p *DeliveryPipeline) remember(d *models.Delivery, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := deliveryKey(d)
	p.lastFP[key] = d.Fingerprint
	p.lastAt[key] = at
}
