//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"journeymap/application/ports"
	"journeymap/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDomainConfig,
	ProvideJourneyRepository,
	ProvideEventPublisher,
	ProvideCollector,
	ProvideCloudWatchRecorder,
	ProvideMetrics,
	ProvideTracer,
	ProvideSettingsWatcher,
	ProvideSettingsSource,
	ProvideExtractionSource,
	ProvideExtractor,
	ProvideAssembler,
	ProvideGenerationService,
	ProvideHistoryService,
	ProvideInMemoryCache,
	wire.Bind(new(ports.Cache), new(*InMemoryCache)),
	ProvideRateLimiter,
	ProvideJWTValidator,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup function
// releases storage handles and background goroutines.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
