package handlers

import (
	"context"
	"fmt"

	"journeymap/application/ports"
	"journeymap/application/queries"
	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"
	"go.uber.org/zap"
)

// journeyStore holds what every journey write needs: loading with an
// ownership check, and saving followed by event publication and cache
// invalidation.
type journeyStore struct {
	repo      ports.JourneyRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	metrics   ports.Metrics
	logger    *zap.Logger
}

// load returns the journey if userID owns it. Journeys of other users are
// reported as missing.
func (s journeyStore) load(ctx context.Context, userID, journeyID string) (*aggregates.Journey, error) {
	journey, err := s.repo.GetByID(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}

	// Verify ownership
	if journey.OwnerID() != userID {
		s.logger.Warn("Journey does not belong to user",
			zap.String("journeyID", journeyID),
			zap.String("userID", userID),
		)
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, journeyID)
	}
	return journey, nil
}

// commit saves the journey, publishes its events and drops the cached view
func (s journeyStore) commit(ctx context.Context, journey *aggregates.Journey, operation string) error {
	if err := s.repo.Save(ctx, journey); err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}
	s.afterWrite(ctx, journey, operation)
	return nil
}

func (s journeyStore) afterWrite(ctx context.Context, journey *aggregates.Journey, operation string) {
	if evs := journey.GetUncommittedEvents(); len(evs) > 0 && s.publisher != nil {
		if err := s.publisher.PublishBatch(ctx, evs); err != nil {
			s.logger.Warn("Failed to publish events",
				zap.String("journeyID", journey.ID().String()),
				zap.Int("events", len(evs)),
				zap.Error(err),
			)
		}
	}
	journey.MarkEventsAsCommitted()

	if s.cache != nil {
		key := queries.JourneyCacheKey(journey.ID().String(), journey.OwnerID())
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to invalidate cached journey", zap.String("key", key), zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordEdit(operation)
	}
}
