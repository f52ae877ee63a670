//go:build !wireinject
// +build !wireinject

// This file is maintained by hand and mirrors the provider set in wire.go.
// A provider added there must be added here in the same order.

package di

import (
	"context"

	"journeymap/infrastructure/config"
)

// InitializeContainer creates a fully wired container. The cleanup function
// releases storage handles and background goroutines.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	domainConfig := ProvideDomainConfig(cfg)
	journeyRepository, cleanup, err := ProvideJourneyRepository(cfg, awsConfig, domainConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	extractionSource, err := ProvideExtractionSource(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	extractor := ProvideExtractor(cfg, logger)
	settingsWatcher, cleanup2, err := ProvideSettingsWatcher(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	settingsSource := ProvideSettingsSource(cfg, settingsWatcher)
	collector := ProvideCollector(cfg)
	cloudWatchRecorder := ProvideCloudWatchRecorder(cfg, awsConfig, logger)
	metrics := ProvideMetrics(cfg, collector, cloudWatchRecorder)
	assembler, err := ProvideAssembler(cfg, settingsSource, domainConfig, metrics, logger)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	eventPublisher := ProvideEventPublisher(cfg, awsConfig, logger)
	generationService := ProvideGenerationService(extractionSource, extractor, assembler, journeyRepository, eventPublisher, metrics, logger)
	historyService := ProvideHistoryService(cfg, logger)
	inMemoryCache, cleanup3 := ProvideInMemoryCache()
	tracer := ProvideTracer(cfg)
	commandBus, err := ProvideCommandBus(generationService, historyService, journeyRepository, eventPublisher, inMemoryCache, settingsSource, metrics, tracer, logger)
	if err != nil {
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	queryBus, err := ProvideQueryBus(cfg, journeyRepository, inMemoryCache, metrics, logger)
	if err != nil {
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	tokenBucketLimiter := ProvideRateLimiter(cfg)
	jwtValidator, err := ProvideJWTValidator(cfg)
	if err != nil {
		cleanup3()
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	container := &Container{
		Config:       cfg,
		Logger:       logger,
		AWSConfig:    awsConfig,
		JourneyRepo:  journeyRepository,
		Generator:    generationService,
		CommandBus:   commandBus,
		QueryBus:     queryBus,
		Cache:        inMemoryCache,
		Collector:    collector,
		CloudWatch:   cloudWatchRecorder,
		Metrics:      metrics,
		Tracer:       tracer,
		Settings:     settingsWatcher,
		RateLimiter:  tokenBucketLimiter,
		JWTValidator: jwtValidator,
	}
	return container, func() {
		cleanup3()
		cleanup2()
		cleanup()
	}, nil
}
