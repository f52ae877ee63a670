package rest

import (
	"journeymap/infrastructure/di"
	"journeymap/interfaces/http/rest/middleware"
	pkgerrors "journeymap/pkg/errors"
)

// NewRouterFromContainer builds the router the API binaries serve
func NewRouterFromContainer(c *di.Container) *Router {
	errs := pkgerrors.NewErrorHandler(c.Logger, c.Config.IsDevelopment())
	return NewRouter(RouterConfig{
		CommandBus:  c.CommandBus,
		QueryBus:    c.QueryBus,
		Repository:  c.JourneyRepo,
		Errors:      errs,
		Collector:   c.Collector,
		Tracer:      c.Tracer,
		RateLimiter: c.RateLimiter,
		Auth: middleware.AuthConfig{
			Validator:    c.JWTValidator,
			TrustGateway: c.Config.IsLambda,
			Errors:       errs,
			Logger:       c.Logger,
		},
		EnableCORS:     c.Config.EnableCORS,
		AllowedOrigins: c.Config.AllowedOrigins,
		RequestTimeout: c.Config.RequestTimeout,
		Logger:         c.Logger,
	})
}
