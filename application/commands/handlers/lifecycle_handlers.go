package handlers

import (
	"context"
	"fmt"
	"time"

	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	"journeymap/application/services"
	"journeymap/domain/core/valueobjects"
	"go.uber.org/zap"
)

// GenerateJourneyHandler creates journeys from scenarios
type GenerateJourneyHandler struct {
	generator *services.GenerationService
	logger    *zap.Logger
}

// NewGenerateJourneyHandler creates a new generate journey handler
func NewGenerateJourneyHandler(generator *services.GenerationService, logger *zap.Logger) *GenerateJourneyHandler {
	return &GenerateJourneyHandler{generator: generator, logger: logger}
}

// Handle executes a create or stream command
func (h *GenerateJourneyHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.CreateJourneyCommand:
		req, err := request(c.JourneyID, c.UserID, c.Title, c.Scenario)
		if err != nil {
			return err
		}
		journey, report, err := h.generator.Generate(ctx, req)
		if err != nil {
			return err
		}
		h.logger.Info("Journey created",
			zap.String("journeyID", journey.ID().String()),
			zap.String("userID", c.UserID),
			zap.Int("fallbacks", report.Fallbacks()),
		)
		return nil

	case commands.StreamJourneyCommand:
		req, err := request(c.JourneyID, c.UserID, c.Title, c.Scenario)
		if err != nil {
			return err
		}
		journey, err := h.generator.Stream(ctx, req, c.Sink)
		if err != nil {
			return err
		}
		h.logger.Info("Journey streamed",
			zap.String("journeyID", journey.ID().String()),
			zap.String("userID", c.UserID),
		)
		return nil

	default:
		return fmt.Errorf("%w: %T", bus.ErrUnexpectedCommand, cmd)
	}
}

func request(journeyID, userID, title, scenario string) (services.GenerationRequest, error) {
	id, err := valueobjects.NewJourneyIDFromString(journeyID)
	if err != nil {
		return services.GenerationRequest{}, fmt.Errorf("invalid journey ID: %w", err)
	}
	return services.GenerationRequest{
		JourneyID: id,
		OwnerID:   userID,
		Title:     title,
		Scenario:  scenario,
	}, nil
}

// DeleteJourneyHandler removes journeys
type DeleteJourneyHandler struct {
	store   journeyStore
	history *services.HistoryService
}

// NewDeleteJourneyHandler creates a new delete journey handler
func NewDeleteJourneyHandler(
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	history *services.HistoryService,
	metrics ports.Metrics,
	logger *zap.Logger,
) *DeleteJourneyHandler {
	return &DeleteJourneyHandler{
		store: journeyStore{
			repo:      repo,
			publisher: publisher,
			cache:     cache,
			metrics:   metrics,
			logger:    logger,
		},
		history: history,
	}
}

// Handle executes the delete journey command
func (h *DeleteJourneyHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(commands.DeleteJourneyCommand)
	if !ok {
		return fmt.Errorf("%w: %T", bus.ErrUnexpectedCommand, cmd)
	}

	journey, err := h.store.load(ctx, c.UserID, c.JourneyID)
	if err != nil {
		return err
	}

	journey.MarkDeleted(time.Now().UTC())
	if err := h.store.repo.Delete(ctx, c.JourneyID); err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	h.store.afterWrite(ctx, journey, "delete_journey")
	h.history.Forget(c.JourneyID)

	h.store.logger.Info("Journey deleted",
		zap.String("journeyID", c.JourneyID),
		zap.String("userID", c.UserID),
	)
	return nil
}
