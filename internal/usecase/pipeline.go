package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"StructSnap/internal/domain/models"
	drepo "StructSnap/internal/domain/repository"
	mid "StructSnap/internal/middleware"
	"StructSnap/pkg/logger"
)

// ReportRenderer turns a snapshot into a human-readable report.
type ReportRenderer interface {
	Render(s *models.Snapshot) string
}

// PipelineConfig tunes the batch run loop.
type PipelineConfig struct {
	Symbols  []string
	Lookback map[models.Timeframe]int
	Workers  int
	Interval time.Duration
}

// SnapshotPipeline runs the fetch -> assemble -> validate -> deliver cycle for
// every configured symbol. Symbols are processed concurrently by a bounded
// worker set; one failed symbol never blocks the rest.
type SnapshotPipeline struct {
	cfg     PipelineConfig
	candles drepo.CandleSource
	prices  drepo.PriceSource
	asm     *SnapshotAssembler
	val     *SnapshotValidator
	pipe    *mid.DeliveryPipeline
	latest  drepo.LatestStore
	report  ReportRenderer
	metrics drepo.Metrics
	log     *logger.Logger

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
}

func NewSnapshotPipeline(
	cfg PipelineConfig,
	candles drepo.CandleSource,
	prices drepo.PriceSource,
	asm *SnapshotAssembler,
	val *SnapshotValidator,
	pipe *mid.DeliveryPipeline,
	latest drepo.LatestStore,
	report ReportRenderer,
	metrics drepo.Metrics,
	log *logger.Logger,
) *SnapshotPipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &SnapshotPipeline{
		cfg:     cfg,
		candles: candles,
		prices:  prices,
		asm:     asm,
		val:     val,
		pipe:    pipe,
		latest:  latest,
		report:  report,
		metrics: metrics,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// RunSummary is the per-run outcome tally.
type RunSummary struct {
	RunID     string
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Start launches the periodic run loop and the delivery flusher. The first
// run fires immediately.
func (p *SnapshotPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.pipe.Start(ctx)
	go func() {
		if _, err := p.RunOnce(ctx); err != nil {
			p.log.Error("initial run failed", logger.Error(err))
		}
		if p.cfg.Interval <= 0 {
			return
		}
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				if _, err := p.RunOnce(ctx); err != nil {
					p.log.Error("scheduled run failed", logger.Error(err))
				}
			}
		}
	}()
}

// Stop halts the run loop and the delivery flusher.
func (p *SnapshotPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	p.pipe.Stop()
}

// RunOnce processes every configured symbol once and returns the tally.
// The returned error is non-nil only when no symbol succeeded.
func (p *SnapshotPipeline) RunOnce(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	sum := &RunSummary{RunID: uuid.NewString()}
	p.log.Info("run started",
		logger.String("run_id", sum.RunID),
		logger.Int("symbols", len(p.cfg.Symbols)))

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				err := p.processSymbol(ctx, sum.RunID, symbol)
				mu.Lock()
				switch {
				case err == nil:
					sum.Succeeded++
					p.metrics.RecordSymbol(symbol, "ok")
				case errors.Is(err, models.ErrSourceUnavailable):
					sum.Skipped++
					p.metrics.RecordSymbol(symbol, "skipped")
					p.log.Warn("symbol skipped", logger.String("symbol", symbol), logger.Error(err))
				default:
					sum.Failed++
					p.metrics.RecordSymbol(symbol, "failed")
					p.log.Error("symbol failed", logger.String("symbol", symbol), logger.Error(err))
				}
				mu.Unlock()
			}
		}()
	}
	for _, s := range p.cfg.Symbols {
		select {
		case <-ctx.Done():
		case jobs <- s:
		}
	}
	close(jobs)
	wg.Wait()

	sum.Elapsed = time.Since(start)
	p.metrics.RecordLatency("run", sum.Elapsed.Seconds())
	result := "ok"
	if sum.Succeeded == 0 && len(p.cfg.Symbols) > 0 {
		result = "failed"
	} else if sum.Failed+sum.Skipped > 0 {
		result = "partial"
	}
	p.metrics.RecordRun(result)
	p.log.Info("run finished",
		logger.String("run_id", sum.RunID),
		logger.String("result", result),
		logger.Int("succeeded", sum.Succeeded),
		logger.Int("skipped", sum.Skipped),
		logger.Int("failed", sum.Failed),
		logger.Duration("elapsed", sum.Elapsed))
	if result == "failed" {
		return sum, fmt.Errorf("run %s: all %d symbols failed", sum.RunID, len(p.cfg.Symbols))
	}
	return sum, nil
}

func (p *SnapshotPipeline) processSymbol(ctx context.Context, runID, symbol string) error {
	set, err := p.fetchSeries(ctx, symbol)
	if err != nil {
		return err
	}

	var price float64
	if p.prices != nil {
		price, _ = p.prices.CurrentPrice(ctx, symbol)
	}
	if price <= 0 {
		// stale but usable; the last 4h close stands in
		price = set[models.TFH4].LastClose()
	}
	p.metrics.RecordLastPrice(symbol, price)

	full, dropped, err := p.asm.Assemble(AssembleInput{
		Symbol: symbol,
		Price:  price,
		Series: set,
		Now:    time.Now(),
	})
	if err != nil {
		return err
	}
	p.metrics.RecordZones(symbol, len(full.AllZones), dropped)

	if err := p.val.Validate(full); err != nil {
		return err
	}

	for _, variant := range []models.Variant{models.VariantSwing, models.VariantFull} {
		shaped, err := ShapeVariant(full, variant)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(shaped)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", symbol, variant, err)
		}
		if err := p.pipe.Process(ctx, &models.Delivery{
			RunID:       runID,
			Symbol:      symbol,
			Variant:     variant,
			Fingerprint: shaped.Fingerprint,
			Snapshot:    shaped,
			Payload:     payload,
		}); err != nil {
			return err
		}
	}

	if p.report != nil {
		if err := p.latest.SetReport(ctx, symbol, p.report.Render(full)); err != nil {
			p.log.Warn("report store failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}
	return nil
}

// fetchSeries pulls and normalizes all timeframes for one symbol. Missing 4h
// history is fatal for the symbol, coarser timeframes degrade.
func (p *SnapshotPipeline) fetchSeries(ctx context.Context, symbol string) (SeriesSet, error) {
	set := SeriesSet{}
	for _, tf := range []models.Timeframe{models.TFH4, models.TFD1, models.TFW1} {
		lookback := p.cfg.Lookback[tf]
		s, err := p.candles.FetchCandles(ctx, symbol, tf, lookback)
		if err != nil {
			if tf == models.TFH4 {
				return nil, fmt.Errorf("fetch %s %s: %w", symbol, tf, err)
			}
			p.log.Warn("timeframe unavailable",
				logger.String("symbol", symbol),
				logger.String("tf", string(tf)),
				logger.Error(err))
			continue
		}
		s.Normalize()
		set[tf] = s
	}
	if set[models.TFH4] == nil || set[models.TFH4].Len() == 0 {
		return nil, fmt.Errorf("fetch %s: empty 4h series: %w", symbol, models.ErrSourceUnavailable)
	}
	return set, nil
}
