//go:build wireinject
// +build wireinject

package di

import (
	"RsiWatch/pkg/config"
	"RsiWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKVStore,
		ProvideKafkaProducer,
		ProvideClickHouseClient,
		ProvideDirectory,
		ProvideResolver,
		ProvideQuoteSource,

		// Repositories
		ProvideWatchlistStore,
		ProvideRsiValueStore,
		ProvideAlertPublisher,
		ProvideCycleHistory,

		// Use cases
		ProvideWatchlistUseCase,
		ProvideMonitorEngine,
		ProvideScheduler,

		// Transport
		ProvideRefreshLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
