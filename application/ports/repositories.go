package ports

import (
	"context"

	"journeymap/domain/core/aggregates"
	"journeymap/domain/events"
)

// JourneyRepository defines the interface for journey persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type JourneyRepository interface {
	// Save persists a journey (create or update)
	Save(ctx context.Context, journey *aggregates.Journey) error

	// GetByID retrieves a journey by its ID
	GetByID(ctx context.Context, id string) (*aggregates.Journey, error)

	// ListByOwner returns one page of a user's journeys, most recently updated
	// first, together with the total number of journeys the user owns
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*aggregates.Journey, int, error)

	// Delete removes a journey
	Delete(ctx context.Context, id string) error
}

// ListOptions defines paging parameters
type ListOptions struct {
	Limit  int
	Offset int
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// Page applies opts to an already ordered slice. A zero limit means no limit.
func Page[T any](items []T, opts ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
