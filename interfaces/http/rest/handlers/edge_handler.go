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

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	base
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *EdgeHandler {
	return &EdgeHandler{base{commandBus: commandBus, queryBus: queryBus, errors: errs, logger: logger}}
}

// CreateEdgeRequest is the body of POST /journeys/{id}/edges
type CreateEdgeRequest struct {
	FromNodeID  string `json:"fromNodeId"`
	ToNodeID    string `json:"toNodeId"`
	Description string `json:"description,omitempty"`
}

// ReconnectEdgeRequest is the body of PUT /journeys/{id}/edges/{edgeId}
type ReconnectEdgeRequest struct {
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
}

// CreateEdge handles POST /journeys/{id}/edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req CreateEdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.ConnectNodesCommand{
		UserID:      userID,
		JourneyID:   journeyID,
		FromNodeID:  req.FromNodeID,
		ToNodeID:    req.ToNodeID,
		Description: req.Description,
	}, userID, journeyID, http.StatusCreated)
}

// ReconnectEdge handles PUT /journeys/{id}/edges/{edgeId}
func (h *EdgeHandler) ReconnectEdge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req ReconnectEdgeRequest
	if !h.decode(w, r, &req) {
		return
	}

	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.ReconnectEdgeCommand{
		UserID:     userID,
		JourneyID:  journeyID,
		EdgeID:     chi.URLParam(r, "edgeId"),
		FromNodeID: req.FromNodeID,
		ToNodeID:   req.ToNodeID,
	}, userID, journeyID, http.StatusOK)
}

// DeleteEdge handles DELETE /journeys/{id}/edges/{edgeId}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.DeleteEdgeCommand{
		UserID:    userID,
		JourneyID: journeyID,
		EdgeID:    chi.URLParam(r, "edgeId"),
	}, userID, journeyID, http.StatusOK)
}
