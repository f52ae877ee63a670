package handlers

import (
	"context"
	"fmt"

	"journeymap/application/ports"
	"journeymap/application/queries"
	"journeymap/application/queries/bus"
	pkgerrors "journeymap/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetJourneyHandler handles journey lookups
type GetJourneyHandler struct {
	repo   ports.JourneyRepository
	logger *zap.Logger
}

// NewGetJourneyHandler creates a new get journey handler
func NewGetJourneyHandler(repo ports.JourneyRepository, logger *zap.Logger) *GetJourneyHandler {
	return &GetJourneyHandler{repo: repo, logger: logger}
}

// Handle returns the journey as an aggregates.Snapshot
func (h *GetJourneyHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.GetJourneyQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}

	journey, err := h.repo.GetByID(ctx, query.JourneyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}

	// Verify ownership
	if journey.OwnerID() != query.UserID {
		h.logger.Debug("Journey requested by non-owner",
			zap.String("journeyID", query.JourneyID),
			zap.String("userID", query.UserID),
		)
		return nil, pkgerrors.ErrJourneyNotFound
	}

	return journey.Snapshot(), nil
}

// ListJourneysHandler handles journey listings
type ListJourneysHandler struct {
	repo   ports.JourneyRepository
	logger *zap.Logger
}

// NewListJourneysHandler creates a new list journeys handler
func NewListJourneysHandler(repo ports.JourneyRepository, logger *zap.Logger) *ListJourneysHandler {
	return &ListJourneysHandler{repo: repo, logger: logger}
}

// Handle returns a queries.ListJourneysResult
func (h *ListJourneysHandler) Handle(ctx context.Context, q bus.Query) (interface{}, error) {
	query, ok := q.(queries.ListJourneysQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", q)
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	journeys, total, err := h.repo.ListByOwner(ctx, query.UserID, ports.ListOptions{Limit: limit, Offset: query.Offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}

	result := queries.ListJourneysResult{
		Journeys:   make([]queries.JourneySummary, 0, len(journeys)),
		TotalCount: total,
		Limit:      limit,
		Offset:     query.Offset,
	}
	for _, j := range journeys {
		result.Journeys = append(result.Journeys, queries.Summarize(j))
	}

	h.logger.Debug("Listed journeys",
		zap.String("userID", query.UserID),
		zap.Int("count", len(result.Journeys)),
		zap.Int("total", total),
	)
	return result, nil
}
