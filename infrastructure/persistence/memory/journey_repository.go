package memory

import (
	"context"
	"fmt"
	"sync"

	"journeymap/application/ports"
	"journeymap/domain/config"
	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"
)

// JourneyRepository keeps journeys in process memory. Snapshots are stored
// instead of aggregates so callers never share mutable state.
type JourneyRepository struct {
	mu       sync.RWMutex
	journeys map[string]aggregates.Snapshot
	cfg      *config.DomainConfig
}

// NewJourneyRepository creates an empty in-memory repository
func NewJourneyRepository(cfg *config.DomainConfig) *JourneyRepository {
	return &JourneyRepository{
		journeys: make(map[string]aggregates.Snapshot),
		cfg:      cfg,
	}
}

var _ ports.JourneyRepository = (*JourneyRepository)(nil)

// Save stores a copy of the journey
func (r *JourneyRepository) Save(ctx context.Context, journey *aggregates.Journey) error {
	if journey == nil {
		return fmt.Errorf("journey is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.journeys[journey.ID().String()] = journey.Snapshot()
	return nil
}

// GetByID returns a fresh aggregate for the stored journey
func (r *JourneyRepository) GetByID(ctx context.Context, id string) (*aggregates.Journey, error) {
	r.mu.RLock()
	snap, ok := r.journeys[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, id)
	}
	return aggregates.FromSnapshot(snap, r.cfg)
}

// ListByOwner returns one page of the owner's journeys, newest first
func (r *JourneyRepository) ListByOwner(ctx context.Context, ownerID string, opts ports.ListOptions) ([]*aggregates.Journey, int, error) {
	r.mu.RLock()
	var owned []*aggregates.Journey
	for _, snap := range r.journeys {
		if snap.OwnerID != ownerID {
			continue
		}
		j, err := aggregates.FromSnapshot(snap, r.cfg)
		if err != nil {
			r.mu.RUnlock()
			return nil, 0, err
		}
		owned = append(owned, j)
	}
	r.mu.RUnlock()

	aggregates.SortedByUpdate(owned)
	return ports.Page(owned, opts), len(owned), nil
}

// Delete removes a journey
func (r *JourneyRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.journeys[id]; !ok {
		return fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, id)
	}
	delete(r.journeys, id)
	return nil
}
