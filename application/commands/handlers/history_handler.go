package handlers

import (
	"context"
	"fmt"
	"time"

	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	"journeymap/application/services"
	"journeymap/domain/core/aggregates"
	"go.uber.org/zap"
)

// HistoryHandler handles undo and redo
type HistoryHandler struct {
	store   journeyStore
	history *services.HistoryService
	now     func() time.Time
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	history *services.HistoryService,
	metrics ports.Metrics,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		store: journeyStore{
			repo:      repo,
			publisher: publisher,
			cache:     cache,
			metrics:   metrics,
			logger:    logger,
		},
		history: history,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type swapFunc func(journeyID string, current aggregates.Snapshot) (aggregates.Snapshot, error)

// Handle executes an undo or redo command
func (h *HistoryHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.UndoJourneyCommand:
		return h.step(ctx, c.UserID, c.JourneyID, "undo", h.history.Undo, h.history.Redo)
	case commands.RedoJourneyCommand:
		return h.step(ctx, c.UserID, c.JourneyID, "redo", h.history.Redo, h.history.Undo)
	default:
		return fmt.Errorf("%w: %T", bus.ErrUnexpectedCommand, cmd)
	}
}

// step swaps the journey with the next snapshot in direction. If the save
// fails the reverse swap puts the stacks back.
func (h *HistoryHandler) step(ctx context.Context, userID, journeyID, direction string, forward, reverse swapFunc) error {
	journey, err := h.store.load(ctx, userID, journeyID)
	if err != nil {
		return err
	}

	current := journey.Snapshot()
	target, err := forward(journeyID, current)
	if err != nil {
		return err
	}

	journey.Restore(target, direction, h.now())
	if err := h.store.commit(ctx, journey, direction); err != nil {
		if _, rerr := reverse(journeyID, target); rerr != nil {
			h.store.logger.Error("Failed to roll back history", zap.String("journeyID", journeyID), zap.Error(rerr))
		}
		return err
	}

	undo, redo := h.history.Depth(journeyID)
	h.store.logger.Info("Journey history step",
		zap.String("journeyID", journeyID),
		zap.String("direction", direction),
		zap.Int("undoDepth", undo),
		zap.Int("redoDepth", redo),
	)
	return nil
}
