package di

import (
	"context"

	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	querybus "journeymap/application/queries/bus"
	"journeymap/application/services"
	"journeymap/infrastructure/config"
	"journeymap/pkg/auth"
	"journeymap/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	AWSConfig    aws.Config
	JourneyRepo  ports.JourneyRepository
	Generator    *services.GenerationService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Cache        *InMemoryCache
	Collector    *observability.Collector
	CloudWatch   *observability.CloudWatchRecorder
	Metrics      ports.Metrics
	Tracer       *observability.Tracer
	Settings     *config.SettingsWatcher
	RateLimiter  *auth.TokenBucketLimiter
	JWTValidator *auth.JWTValidator
}

// FlushMetrics sends buffered CloudWatch metrics. Lambda handlers call it
// at the end of every invocation.
func (c *Container) FlushMetrics(ctx context.Context) {
	if c.CloudWatch == nil {
		return
	}
	if err := c.CloudWatch.Flush(ctx); err != nil {
		c.Logger.Warn("Failed to flush metrics", zap.Error(err))
	}
}
