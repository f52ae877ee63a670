package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	ExtractedItems     *prometheus.CounterVec
	Resolutions        *prometheus.CounterVec
	DroppedItems       *prometheus.CounterVec
	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec

	// Journey metrics
	Edits         *prometheus.CounterVec
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ExtractedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extracted_items_total",
				Help:      "Items extracted from model answers, by category",
			},
			[]string{"category"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "name_resolutions_total",
				Help:      "Name references resolved, by category and match quality",
			},
			[]string{"category", "quality"},
		),
		DroppedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_items_total",
				Help:      "Items dropped during assembly, by category and reason",
			},
			[]string{"category", "reason"},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Journey generations, by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Journey generation duration in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"mode"},
		),
		Edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journey_edits_total",
				Help:      "Journey edits, by operation",
			},
			[]string{"operation"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Queries, by type and outcome",
			},
			[]string{"query", "outcome"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.ExtractedItems,
		c.Resolutions,
		c.DroppedItems,
		c.Generations,
		c.GenerationDuration,
		c.Edits,
		c.Queries,
		c.QueryDuration,
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) RecordCategory(category string, items int) {
	c.ExtractedItems.WithLabelValues(category).Add(float64(items))
}

func (c *Collector) RecordResolution(category, quality string) {
	c.Resolutions.WithLabelValues(category, quality).Inc()
}

func (c *Collector) RecordDropped(category, reason string) {
	c.DroppedItems.WithLabelValues(category, reason).Inc()
}

func (c *Collector) RecordGeneration(mode, outcome string, seconds float64) {
	c.Generations.WithLabelValues(mode, outcome).Inc()
	c.GenerationDuration.WithLabelValues(mode).Observe(seconds)
}

func (c *Collector) RecordEdit(operation string) {
	c.Edits.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordQuery(queryType, outcome string, seconds float64) {
	c.Queries.WithLabelValues(queryType, outcome).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(seconds)
}

// Nop discards every measurement
type Nop struct{}

func (Nop) RecordCategory(string, int)               {}
func (Nop) RecordResolution(string, string)          {}
func (Nop) RecordDropped(string, string)             {}
func (Nop) RecordGeneration(string, string, float64) {}
func (Nop) RecordEdit(string)                        {}
func (Nop) RecordQuery(string, string, float64)      {}
