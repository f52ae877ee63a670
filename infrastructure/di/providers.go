package di

import (
	"context"
	"fmt"
	"time"

	"journeymap/application/assembler"
	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	commandhandlers "journeymap/application/commands/handlers"
	"journeymap/application/extraction"
	"journeymap/application/ports"
	"journeymap/application/queries"
	querybus "journeymap/application/queries/bus"
	queryhandlers "journeymap/application/queries/handlers"
	"journeymap/application/services"
	domainconfig "journeymap/domain/config"
	"journeymap/domain/events"
	"journeymap/infrastructure/config"
	"journeymap/infrastructure/llm/openai"
	"journeymap/infrastructure/llm/replay"
	"journeymap/infrastructure/llm/resilience"
	"journeymap/infrastructure/messaging/eventbridge"
	"journeymap/infrastructure/persistence/dynamodb"
	"journeymap/infrastructure/persistence/memory"
	"journeymap/infrastructure/persistence/pebble"
	"journeymap/pkg/auth"
	"journeymap/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = level
	}

	return zcfg.Build(zap.Fields(zap.String("service", "journeymap")))
}

// ProvideAWSConfig creates AWS configuration. Loading does not contact AWS,
// so it is safe for deployments that only use local backends.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDomainConfig selects the business rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideJourneyRepository creates the journey repository selected by
// STORAGE_BACKEND. The cleanup closes the pebble store.
func ProvideJourneyRepository(
	cfg *config.Config,
	awsCfg aws.Config,
	domain *domainconfig.DomainConfig,
	logger *zap.Logger,
) (ports.JourneyRepository, func(), error) {
	switch cfg.StorageBackend {
	case "dynamodb":
		repo := dynamodb.NewJourneyRepository(
			awsdynamodb.NewFromConfig(awsCfg),
			cfg.DynamoDBTable,
			cfg.IndexName,
			domain,
			logger,
		)
		return repo, func() {}, nil

	case "pebble":
		repo, err := pebble.Open(cfg.PebblePath, domain, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close journey store", zap.Error(err))
			}
		}
		return repo, cleanup, nil

	default:
		logger.Warn("Using in-memory journey storage; journeys are lost on restart")
		return memory.NewJourneyRepository(domain), func() {}, nil
	}
}

// ProvideEventPublisher publishes to EventBridge when EVENT_BUS_NAME is set
// and only logs the events otherwise
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return &logPublisher{logger: logger}
	}
	return eventbridge.NewPublisher(
		awseventbridge.NewFromConfig(awsCfg),
		cfg.EventBusName,
		cfg.EventSource,
		logger,
	)
}

// logPublisher stands in for the event bus in local runs
type logPublisher struct {
	logger *zap.Logger
}

func (p *logPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("type", event.GetEventType()),
		zap.String("journeyID", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
	)
	return nil
}

func (p *logPublisher) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	for _, e := range evs {
		_ = p.Publish(ctx, e)
	}
	return nil
}

// ProvideCollector creates the Prometheus collector. HTTP metrics always go
// here; pipeline metrics only when METRICS_BACKEND is prometheus.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideCloudWatchRecorder returns nil unless METRICS_BACKEND is cloudwatch
func ProvideCloudWatchRecorder(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) *observability.CloudWatchRecorder {
	if cfg.MetricsBackend != "cloudwatch" {
		return nil
	}
	namespace := fmt.Sprintf("JourneyMap/%s", cfg.Environment)
	return observability.NewCloudWatchRecorder(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideMetrics picks the pipeline metrics backend
func ProvideMetrics(
	cfg *config.Config,
	collector *observability.Collector,
	recorder *observability.CloudWatchRecorder,
) ports.Metrics {
	switch cfg.MetricsBackend {
	case "cloudwatch":
		return recorder
	case "none":
		return observability.Nop{}
	default:
		return collector
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("journeymap", cfg.EnableTracing)
}

// ProvideSettingsWatcher watches CONFIG_FILE for layout changes. Without a
// config file it returns nil.
func ProvideSettingsWatcher(cfg *config.Config, logger *zap.Logger) (*config.SettingsWatcher, func(), error) {
	if cfg.ConfigFile == "" {
		return nil, func() {}, nil
	}
	w, err := config.NewSettingsWatcher(cfg.ConfigFile, cfg.LayoutOverrides, logger)
	if err != nil {
		return nil, nil, err
	}
	w.Start()
	return w, w.Stop, nil
}

// ProvideSettingsSource hands the watcher to the assembler, or the static
// settings when no file is watched
func ProvideSettingsSource(cfg *config.Config, watcher *config.SettingsWatcher) assembler.SettingsSource {
	if watcher == nil {
		return assembler.StaticSettings(cfg.Layout)
	}
	return watcher
}

// ProvideExtractionSource creates the language model source. REPLAY_FILE
// replays a recorded answer instead of calling the model. Either way the
// source sits behind a circuit breaker.
func ProvideExtractionSource(cfg *config.Config, logger *zap.Logger) (ports.ExtractionSource, error) {
	var source ports.ExtractionSource
	if cfg.ReplayFile != "" {
		replayed, err := replay.LoadFile(cfg.ReplayFile, replay.WithDelay(cfg.ReplayDelay))
		if err != nil {
			return nil, err
		}
		logger.Info("Replaying recorded model answer", zap.String("file", cfg.ReplayFile))
		source = replayed
	} else {
		source = openai.NewSource(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		}, logger)
	}

	return resilience.NewBreakerSource(source, resilience.BreakerConfig{
		Name:        "language-model",
		MaxFailures: uint32(cfg.BreakerMaxFailures),
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, logger), nil
}

// ProvideExtractor creates the incremental JSON extractor
func ProvideExtractor(cfg *config.Config, logger *zap.Logger) *extraction.Extractor {
	return extraction.NewExtractor(logger, extraction.WithMaxBuffer(cfg.MaxBufferBytes))
}

// ProvideAssembler creates the graph assembler
func ProvideAssembler(
	cfg *config.Config,
	settings assembler.SettingsSource,
	domain *domainconfig.DomainConfig,
	metrics ports.Metrics,
	logger *zap.Logger,
) (*assembler.Assembler, error) {
	policy, err := assembler.ParseIntersectionPolicy(cfg.IntersectionPolicy)
	if err != nil {
		return nil, err
	}
	return assembler.NewAssembler(settings, policy, domain, metrics, logger), nil
}

// ProvideGenerationService creates the generation service
func ProvideGenerationService(
	source ports.ExtractionSource,
	extractor *extraction.Extractor,
	asm *assembler.Assembler,
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
) *services.GenerationService {
	return services.NewGenerationService(source, extractor, asm, repo, publisher, metrics, logger)
}

// ProvideHistoryService creates the undo/redo history
func ProvideHistoryService(cfg *config.Config, logger *zap.Logger) *services.HistoryService {
	return services.NewHistoryService(cfg.HistoryLimit, logger)
}

// ProvideInMemoryCache creates the query cache
func ProvideInMemoryCache() (*InMemoryCache, func()) {
	cache := NewInMemoryCache(time.Minute)
	return cache, cache.Close
}

// ProvideRateLimiter limits journey generations per user
func ProvideRateLimiter(cfg *config.Config) *auth.TokenBucketLimiter {
	return auth.NewTokenBucketLimiter(cfg.GenerateRate, cfg.GenerateBurst)
}

// ProvideJWTValidator returns nil when authentication is disabled
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.AuthDisabled {
		return nil, nil
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	generator *services.GenerationService,
	history *services.HistoryService,
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	settings assembler.SettingsSource,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.TracingMiddleware(tracer),
	)

	generate := commandhandlers.NewGenerateJourneyHandler(generator, logger)
	edit := commandhandlers.NewEditJourneyHandler(repo, publisher, cache, history, settings, metrics, logger)
	undoRedo := commandhandlers.NewHistoryHandler(repo, publisher, cache, history, metrics, logger)
	remove := commandhandlers.NewDeleteJourneyHandler(repo, publisher, cache, history, metrics, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateJourneyCommand{}, generate},
		{commands.StreamJourneyCommand{}, generate},
		{commands.UpdateJourneyCommand{}, edit},
		{commands.MoveNodeCommand{}, edit},
		{commands.UpdateNodeCommand{}, edit},
		{commands.DeleteNodeCommand{}, edit},
		{commands.ConnectNodesCommand{}, edit},
		{commands.ReconnectEdgeCommand{}, edit},
		{commands.DeleteEdgeCommand{}, edit},
		{commands.UndoJourneyCommand{}, undoRedo},
		{commands.RedoJourneyCommand{}, undoRedo},
		{commands.DeleteJourneyCommand{}, remove},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers. Every
// handler is measured; journey lookups are cached.
func ProvideQueryBus(
	cfg *config.Config,
	repo ports.JourneyRepository,
	cache ports.Cache,
	metrics ports.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	caching := querybus.NewCachingMiddleware(cache, cfg.QueryCacheTTL)
	measured := querybus.NewMetricsMiddleware(metrics)

	if err := queryBus.Register(queries.GetJourneyQuery{},
		measured.Wrap(caching.Wrap(queryhandlers.NewGetJourneyHandler(repo, logger)))); err != nil {
		return nil, err
	}
	if err := queryBus.Register(queries.ListJourneysQuery{},
		measured.Wrap(queryhandlers.NewListJourneysHandler(repo, logger))); err != nil {
		return nil, err
	}

	return queryBus, nil
}
