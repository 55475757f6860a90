//go:build wireinject
// +build wireinject

package di

import (
	"StructSnap/pkg/config"
	"StructSnap/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideEngineParams,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,

		// Repositories
		ProvideSnapshotStore,
		ProvideLatestStore,
		ProvidePublisher,

		// Market data sources
		ProvideCandleSource,
		ProvideMarkPriceStream,
		ProvidePriceSource,

		// Use cases
		ProvideAssembler,
		ProvideValidator,
		ProvideDeliverer,
		ProvideDeliveryPipeline,
		ProvideRenderer,
		ProvideSnapshotPipeline,

		// HTTP
		ProvideSnapshotsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
