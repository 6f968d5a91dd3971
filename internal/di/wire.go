//go:build wireinject
// +build wireinject

package di

import (
	"FinSignal/pkg/config"
	"FinSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Reference data and upstream clients
		ProvideTickerTable,
		ProvideQuoteProvider,
		ProvideDisclosureCache,
		ProvideDisclosureProvider,
		ProvideNarrator,

		// Optional backends
		ProvideRedisClient,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Repositories
		ProvidePresetStore,
		ProvideEvaluationPublisher,
		ProvideEvaluationStore,

		// Use cases
		ProvideResolver,
		ProvideMarketFetcher,
		ProvideFiscalFetcher,
		ProvideAggregator,
		ProvidePresetService,
		ProvideEvaluationService,
		ProvideChatUseCase,
		ProvideEvaluationSink,
		ProvideKafkaConsumer,

		// Transport
		ProvideHTTPHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeToolkit wires the evaluation pipeline without optional backends.
func InitializeToolkit(cfg *config.Config) (*Toolkit, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideTickerTable,
		ProvideQuoteProvider,
		ProvideToolkitDisclosureCache,
		ProvideDisclosureProvider,
		ProvideResolver,
		ProvideMarketFetcher,
		ProvideFiscalFetcher,
		ProvideAggregator,
		ProvideToolkit,
	)
	return &Toolkit{}, nil
}
