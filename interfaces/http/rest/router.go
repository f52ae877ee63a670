package rest

import (
	"context"
	"net/http"
	"time"

	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	querybus "journeymap/application/queries/bus"
	"journeymap/interfaces/http/rest/handlers"
	"journeymap/interfaces/http/rest/middleware"
	"journeymap/pkg/auth"
	"journeymap/pkg/common"
	pkgerrors "journeymap/pkg/errors"
	"journeymap/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// readinessProbeOwner is never a real user; listing it only proves the store answers
const readinessProbeOwner = "__readiness__"

// RouterConfig holds everything the router wires into handlers and middleware
type RouterConfig struct {
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Repository     ports.JourneyRepository
	Errors         *pkgerrors.ErrorHandler
	Collector      *observability.Collector // optional, serves /metrics
	Tracer         *observability.Tracer    // optional
	RateLimiter    auth.RateLimiter         // optional, guards generation
	Auth           middleware.AuthConfig
	EnableCORS     bool
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	cfg RouterConfig
}

// NewRouter creates a new router instance
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Errors == nil {
		cfg.Errors = pkgerrors.NewErrorHandler(cfg.Logger, false)
	}
	if cfg.Auth.Errors == nil {
		cfg.Auth.Errors = cfg.Errors
	}
	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = cfg.Logger
	}
	return &Router{cfg: cfg}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestIDHeader)
	var observer middleware.HTTPObserver
	if rt.cfg.Collector != nil {
		observer = rt.cfg.Collector
	}
	router.Use(middleware.Logger(rt.cfg.Logger, observer))
	if rt.cfg.Tracer != nil {
		router.Use(rt.cfg.Tracer.Middleware)
	}

	if rt.cfg.EnableCORS {
		origins := rt.cfg.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.Collector != nil {
		router.Handle("/metrics", rt.cfg.Collector.Handler())
	}

	journeys := handlers.NewJourneyHandler(rt.cfg.CommandBus, rt.cfg.QueryBus, rt.cfg.Errors, rt.cfg.Logger)
	nodes := handlers.NewNodeHandler(rt.cfg.CommandBus, rt.cfg.QueryBus, rt.cfg.Errors, rt.cfg.Logger)
	edges := handlers.NewEdgeHandler(rt.cfg.CommandBus, rt.cfg.QueryBus, rt.cfg.Errors, rt.cfg.Logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg.Auth))

		r.Route("/journeys", func(r chi.Router) {
			// Generation calls the language model, so it is rate limited
			// and, for the one-shot form, bounded in time. Streams are
			// bounded by the client hanging up.
			r.Group(func(r chi.Router) {
				if rt.cfg.RateLimiter != nil {
					r.Use(middleware.RateLimit(rt.cfg.RateLimiter, rt.cfg.Errors, rt.cfg.Logger))
				}
				r.With(rt.timeout).Post("/", journeys.CreateJourney)
				r.Post("/stream", journeys.StreamJourney)
			})
			r.Get("/", journeys.ListJourneys)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(rt.timeout)
				r.Get("/", journeys.GetJourney)
				r.Patch("/", journeys.UpdateJourney)
				r.Delete("/", journeys.DeleteJourney)
				r.Post("/undo", journeys.Undo)
				r.Post("/redo", journeys.Redo)

				r.Route("/nodes/{nodeId}", func(r chi.Router) {
					r.Patch("/", nodes.UpdateNode)
					r.Delete("/", nodes.DeleteNode)
					r.Put("/position", nodes.MoveNode)
				})

				r.Post("/edges", edges.CreateEdge)
				r.Put("/edges/{edgeId}", edges.ReconnectEdge)
				r.Delete("/edges/{edgeId}", edges.DeleteEdge)
			})
		})
	})

	return router
}

func (rt *Router) timeout(next http.Handler) http.Handler {
	if rt.cfg.RequestTimeout <= 0 {
		return next
	}
	return chimiddleware.Timeout(rt.cfg.RequestTimeout)(next)
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once the journey store answers a query
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.cfg.Repository != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if _, _, err := rt.cfg.Repository.ListByOwner(ctx, readinessProbeOwner, ports.ListOptions{Limit: 1}); err != nil {
			rt.cfg.Logger.Warn("Readiness check failed", zap.Error(err))
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
