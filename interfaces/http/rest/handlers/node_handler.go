package handlers

import (
	"net/http"

	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	querybus "journeymap/application/queries/bus"
	pkgerrors "journeymap/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles node edits inside a journey
type NodeHandler struct {
	base
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{base{commandBus: commandBus, queryBus: queryBus, errors: errs, logger: logger}}
}

// UpdateNodeRequest is the body of PATCH /journeys/{id}/nodes/{nodeId}.
// Omitted fields are left unchanged.
type UpdateNodeRequest struct {
	Action       *string  `json:"action,omitempty"`
	Emotion      *string  `json:"emotion,omitempty"`
	EmotionScore *float64 `json:"emotionScore,omitempty"`
	PainPoint    *string  `json:"painPoint,omitempty"`
	Opportunity  *string  `json:"opportunity,omitempty"`
}

// MoveNodeRequest is the body of PUT /journeys/{id}/nodes/{nodeId}/position
type MoveNodeRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// UpdateNode handles PATCH /journeys/{id}/nodes/{nodeId}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req UpdateNodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.UpdateNodeCommand{
		UserID:       userID,
		JourneyID:    journeyID,
		NodeID:       chi.URLParam(r, "nodeId"),
		Action:       req.Action,
		Emotion:      req.Emotion,
		EmotionScore: req.EmotionScore,
		PainPoint:    req.PainPoint,
		Opportunity:  req.Opportunity,
	}, userID, journeyID, http.StatusOK)
}

// MoveNode handles PUT /journeys/{id}/nodes/{nodeId}/position. The node is
// re-homed to the lane cell under the drop point.
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req MoveNodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.X == nil || req.Y == nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("x and y are required"))
		return
	}

	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.MoveNodeCommand{
		UserID:    userID,
		JourneyID: journeyID,
		NodeID:    chi.URLParam(r, "nodeId"),
		X:         *req.X,
		Y:         *req.Y,
	}, userID, journeyID, http.StatusOK)
}

// DeleteNode handles DELETE /journeys/{id}/nodes/{nodeId}. Edges touching
// the node are removed with it.
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.DeleteNodeCommand{
		UserID:    userID,
		JourneyID: journeyID,
		NodeID:    chi.URLParam(r, "nodeId"),
	}, userID, journeyID, http.StatusOK)
}
