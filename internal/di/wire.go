//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"TrendPulse/pkg/config"
	"TrendPulse/pkg/server"
)

// InitializeApp builds the full application graph from configuration.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideJobStore,
		ProvideKafkaProducer,
		ProvideEventPublisher,
		ProvideClickHouseClient,
		ProvideArchive,
		ProvideSources,
		ProvideCompleter,
		ProvideCollector,
		ProvideAnalyzer,
		ProvideSummarizer,
		ProvideWorkerPool,
		ProvideOrchestrator,
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
