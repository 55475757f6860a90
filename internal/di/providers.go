package di

import (
	"context"
	"fmt"
	"time"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/domain/repository"
	"StructSnap/internal/engine"
	"StructSnap/internal/handler/api"
	mid "StructSnap/internal/middleware"
	"StructSnap/internal/report"
	internalrepo "StructSnap/internal/repository"
	"StructSnap/internal/service/binance"
	icache "StructSnap/internal/service/cache"
	"StructSnap/internal/service/ratelimit"
	"StructSnap/internal/usecase"
	pkgcache "StructSnap/pkg/cache"
	pkgch "StructSnap/pkg/clickhouse"
	"StructSnap/pkg/config"
	xhttp "StructSnap/pkg/http"
	pkgkafka "StructSnap/pkg/kafka"
	"StructSnap/pkg/logger"
	"StructSnap/pkg/metrics"
	"StructSnap/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngineParams builds engine tuning from the defaults with config
// overrides applied where set.
func ProvideEngineParams(cfg *config.Config) engine.Params {
	p := engine.DefaultParams()
	e := cfg.Engine

	if e.PivotWindow.H4 > 0 {
		p.PivotWindow[models.TFH4] = e.PivotWindow.H4
	}
	if e.PivotWindow.D1 > 0 {
		p.PivotWindow[models.TFD1] = e.PivotWindow.D1
	}
	if e.PivotWindow.W1 > 0 {
		p.PivotWindow[models.TFW1] = e.PivotWindow.W1
	}
	if e.ATRPeriod > 0 {
		p.ATRPeriod = e.ATRPeriod
	}
	if e.MergeK.Operational > 0 {
		p.MergeK[models.TierOperational] = e.MergeK.Operational
	}
	if e.MergeK.Structural > 0 {
		p.MergeK[models.TierStructural] = e.MergeK.Structural
	}
	if e.MergeK.Macro > 0 {
		p.MergeK[models.TierMacro] = e.MergeK.Macro
	}
	if e.BufferK.Operational > 0 {
		p.BufferK[models.TierOperational] = e.BufferK.Operational
	}
	if e.BufferK.Structural > 0 {
		p.BufferK[models.TierStructural] = e.BufferK.Structural
	}
	if e.BufferK.Macro > 0 {
		p.BufferK[models.TierMacro] = e.BufferK.Macro
	}
	if e.WorkK > 0 {
		p.WorkK = e.WorkK
	}
	if e.MaxTestBars > 0 {
		p.MaxTestBars = e.MaxTestBars
	}
	if e.SelectPerSide > 0 {
		p.SelectPerSide = e.SelectPerSide
	}
	if e.BounceThreshold > 0 {
		p.BounceThreshold = e.BounceThreshold
	}
	if e.MagnetThreshold > 0 {
		p.MagnetThreshold = e.MagnetThreshold
	}
	if e.MinCharacterTests > 0 {
		p.MinCharacterTests = e.MinCharacterTests
	}
	return p
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// versioned snapshot store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates the versioned snapshot history store and
// initializes its schema. Nil when ClickHouse is disabled.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config) (repository.SnapshotStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseSnapshotStore(chClient.DB(), cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("snapshot store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing to
// the bus is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the snapshot bus publisher. Nil when Kafka is
// disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRedisCache creates the Redis client backing the latest pointers.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	opts := []pkgcache.RedisOption{
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	}
	if cfg.Redis.Prefix != "" {
		opts = append(opts, pkgcache.WithRedisPrefix(cfg.Redis.Prefix))
	}
	rc, err := pkgcache.NewRedisCache(opts...)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideLatestStore creates the latest snapshot pointer store on Redis.
func ProvideLatestStore(rc *pkgcache.RedisCache) repository.LatestStore {
	return internalrepo.NewRedisLatestStore(rc)
}

// ProvideCandleSource creates the Binance klines client.
func ProvideCandleSource(cfg *config.Config) repository.CandleSource {
	var clientOpts []xhttp.ClientOption
	if cfg.Binance.RequestTimeout > 0 {
		clientOpts = append(clientOpts, xhttp.WithTimeout(cfg.Binance.RequestTimeout))
	}
	httpClient := xhttp.NewClient(clientOpts...)
	return binance.NewRestClient(httpClient, ratelimit.New(),
		binance.WithBaseURL(cfg.Binance.BaseURL),
		binance.WithRateLimit(cfg.Binance.RateCapacity, cfg.Binance.RateRefill),
	)
}

// ProvideMarkPriceStream creates the live mark price stream, or nil when
// evaluation against the last close is configured.
func ProvideMarkPriceStream(cfg *config.Config, log *logger.Logger) *binance.MarkPriceStream {
	if !cfg.Binance.UseMarkPrice {
		return nil
	}
	return binance.NewMarkPriceStream(cfg.Pipeline.Symbols, log,
		binance.WithStreamURL(cfg.Binance.StreamURL),
		binance.WithReconnectDelay(cfg.Binance.ReconnectDelay),
	)
}

// ProvidePriceSource exposes the stream as the price source when present.
func ProvidePriceSource(stream *binance.MarkPriceStream) repository.PriceSource {
	if stream == nil {
		return nil
	}
	return stream
}

// ProvideAssembler creates the snapshot assembler.
func ProvideAssembler(params engine.Params, log *logger.Logger) *usecase.SnapshotAssembler {
	return usecase.NewSnapshotAssembler(params, log)
}

// ProvideValidator creates the snapshot validator.
func ProvideValidator(params engine.Params) *usecase.SnapshotValidator {
	return usecase.NewSnapshotValidator(params.SelectPerSide)
}

// ProvideDeliverer creates the fan-out sink for finished snapshots.
func ProvideDeliverer(
	store repository.SnapshotStore,
	latest repository.LatestStore,
	pub repository.Publisher,
	metrics repository.Metrics,
) *usecase.SnapshotDeliverer {
	return usecase.NewSnapshotDeliverer(store, latest, pub, metrics)
}

// ProvideDeliveryPipeline creates the dedup and retry middleware in front of
// the deliverer.
func ProvideDeliveryPipeline(
	deliverer *usecase.SnapshotDeliverer,
	metrics repository.Metrics,
	cfg *config.Config,
) *mid.DeliveryPipeline {
	var opts []mid.PipelineOption
	if cfg.Publish.BufferSize > 0 {
		opts = append(opts, mid.WithBufferSize(cfg.Publish.BufferSize))
	}
	if cfg.Publish.ForceInterval > 0 {
		opts = append(opts, mid.WithForceInterval(cfg.Publish.ForceInterval))
	}
	return mid.NewDeliveryPipeline(deliverer, metrics, opts...)
}

// ProvideRenderer creates the markdown report renderer.
func ProvideRenderer() usecase.ReportRenderer {
	return report.NewRenderer()
}

// ProvideSnapshotPipeline creates the batch run loop.
func ProvideSnapshotPipeline(
	cfg *config.Config,
	candles repository.CandleSource,
	prices repository.PriceSource,
	asm *usecase.SnapshotAssembler,
	val *usecase.SnapshotValidator,
	pipe *mid.DeliveryPipeline,
	latest repository.LatestStore,
	renderer usecase.ReportRenderer,
	metrics repository.Metrics,
	log *logger.Logger,
) *usecase.SnapshotPipeline {
	lookback := map[models.Timeframe]int{
		models.TFH4: cfg.Pipeline.Lookback.H4,
		models.TFD1: cfg.Pipeline.Lookback.D1,
		models.TFW1: cfg.Pipeline.Lookback.W1,
	}
	if lookback[models.TFH4] <= 0 {
		lookback[models.TFH4] = 600
	}
	if lookback[models.TFD1] <= 0 {
		lookback[models.TFD1] = 420
	}
	if lookback[models.TFW1] <= 0 {
		lookback[models.TFW1] = 260
	}
	return usecase.NewSnapshotPipeline(
		usecase.PipelineConfig{
			Symbols:  cfg.Pipeline.Symbols,
			Lookback: lookback,
			Workers:  cfg.Pipeline.Workers,
			Interval: cfg.Pipeline.Interval,
		},
		candles, prices, asm, val, pipe, latest, renderer, metrics, log,
	)
}

// ProvideSnapshotsHandler creates the read-side HTTP handler with a short-TTL
// response cache.
func ProvideSnapshotsHandler(log *logger.Logger, latest repository.LatestStore) xhttp.Handler {
	h := api.NewSnapshotsHandler(log, latest)
	h.SetCache(icache.NewTTLCache())
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	pipeline *usecase.SnapshotPipeline,
	stream *binance.MarkPriceStream,
	deliverer *usecase.SnapshotDeliverer,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, log, pipeline, stream, deliverer, chClient)
	app.SetHTTPHandler(handler)
	return app
}
