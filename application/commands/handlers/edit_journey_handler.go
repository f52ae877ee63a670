package handlers

import (
	"context"
	"fmt"
	"time"

	"journeymap/application/assembler"
	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	"journeymap/application/ports"
	"journeymap/application/services"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/valueobjects"
	"go.uber.org/zap"
)

// EditJourneyHandler applies user edits to a stored journey. Every
// successful edit leaves an undo entry.
type EditJourneyHandler struct {
	store    journeyStore
	history  *services.HistoryService
	settings assembler.SettingsSource
	now      func() time.Time
}

// NewEditJourneyHandler creates a new edit journey handler
func NewEditJourneyHandler(
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	history *services.HistoryService,
	settings assembler.SettingsSource,
	metrics ports.Metrics,
	logger *zap.Logger,
) *EditJourneyHandler {
	return &EditJourneyHandler{
		store: journeyStore{
			repo:      repo,
			publisher: publisher,
			cache:     cache,
			metrics:   metrics,
			logger:    logger,
		},
		history:  history,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes an edit command
func (h *EditJourneyHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.UpdateJourneyCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "rename", func(j *aggregates.Journey, now time.Time) error {
			return j.Rename(c.Title, c.Description, now)
		})

	case commands.MoveNodeCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "move_node", func(j *aggregates.Journey, now time.Time) error {
			_, err := j.MoveNode(c.NodeID, valueobjects.Position{X: c.X, Y: c.Y}, h.settings.Current(), now)
			return err
		})

	case commands.UpdateNodeCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "update_node", func(j *aggregates.Journey, now time.Time) error {
			_, err := j.UpdateNode(c.NodeID, c.Patch(), now)
			return err
		})

	case commands.DeleteNodeCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "delete_node", func(j *aggregates.Journey, now time.Time) error {
			return j.DeleteNode(c.NodeID, now)
		})

	case commands.ConnectNodesCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "connect_nodes", func(j *aggregates.Journey, now time.Time) error {
			_, err := j.ConnectNodes(c.FromNodeID, c.ToNodeID, c.Description, now)
			return err
		})

	case commands.ReconnectEdgeCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "reconnect_edge", func(j *aggregates.Journey, now time.Time) error {
			_, err := j.ReconnectEdge(c.EdgeID, c.FromNodeID, c.ToNodeID, now)
			return err
		})

	case commands.DeleteEdgeCommand:
		return h.edit(ctx, c.UserID, c.JourneyID, "delete_edge", func(j *aggregates.Journey, now time.Time) error {
			return j.DeleteEdge(c.EdgeID, now)
		})

	default:
		return fmt.Errorf("%w: %T", bus.ErrUnexpectedCommand, cmd)
	}
}

func (h *EditJourneyHandler) edit(ctx context.Context, userID, journeyID, operation string, apply func(*aggregates.Journey, time.Time) error) error {
	journey, err := h.store.load(ctx, userID, journeyID)
	if err != nil {
		return err
	}

	before := journey.Snapshot()
	if err := apply(journey, h.now()); err != nil {
		return err
	}

	if err := h.store.commit(ctx, journey, operation); err != nil {
		return err
	}
	h.history.Record(journeyID, before)

	h.store.logger.Info("Journey edited",
		zap.String("journeyID", journeyID),
		zap.String("userID", userID),
		zap.String("operation", operation),
		zap.Int("version", journey.Version()),
	)
	return nil
}
