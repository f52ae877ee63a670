package handlers

import (
	"net/http"

	"journeymap/application/commands"
	"journeymap/application/commands/bus"
	"journeymap/application/queries"
	querybus "journeymap/application/queries/bus"
	"journeymap/domain/core/valueobjects"
	"journeymap/interfaces/http/rest/sse"
	"journeymap/pkg/common"
	pkgerrors "journeymap/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JourneyHandler handles journey-level HTTP requests
type JourneyHandler struct {
	base
}

// NewJourneyHandler creates a new journey handler
func NewJourneyHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *JourneyHandler {
	return &JourneyHandler{base{commandBus: commandBus, queryBus: queryBus, errors: errs, logger: logger}}
}

// CreateJourneyRequest is the body of POST /journeys and POST /journeys/stream
type CreateJourneyRequest struct {
	Scenario string `json:"scenario"`
	Title    string `json:"title,omitempty"`
}

// UpdateJourneyRequest is the body of PATCH /journeys/{id}
type UpdateJourneyRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateJourney handles POST /journeys
func (h *JourneyHandler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req CreateJourneyRequest
	if !h.decode(w, r, &req) {
		return
	}

	journeyID := valueobjects.NewJourneyID().String()
	cmd := commands.CreateJourneyCommand{
		JourneyID: journeyID,
		UserID:    userID,
		Scenario:  req.Scenario,
		Title:     req.Title,
	}
	h.send(w, r, cmd, userID, journeyID, http.StatusCreated)
}

// StreamJourney handles POST /journeys/stream. Progress is written as
// Server-Sent Events; errors before the first event are plain JSON.
func (h *JourneyHandler) StreamJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req CreateJourneyRequest
	if !h.decode(w, r, &req) {
		return
	}

	stream, err := sse.NewWriter(w)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	journeyID := valueobjects.NewJourneyID().String()
	err = h.commandBus.Send(r.Context(), commands.StreamJourneyCommand{
		JourneyID: journeyID,
		UserID:    userID,
		Scenario:  req.Scenario,
		Title:     req.Title,
		Sink:      stream,
	})
	if err == nil {
		return
	}
	if !stream.Started() {
		h.errors.Handle(w, r, err)
		return
	}
	// The client already received the error event
	h.logger.Info("Journey stream ended with error",
		zap.String("journeyID", journeyID),
		zap.String("userID", userID),
		zap.Error(err),
	)
}

// ListJourneys handles GET /journeys?page=&page_size=
func (h *JourneyHandler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	params := common.ExtractPaginationParams(r)

	result, err := h.queryBus.Ask(r.Context(), queries.ListJourneysQuery{
		UserID: userID,
		Limit:  params.PageSize,
		Offset: params.CalculateOffset(),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	page := result.(queries.ListJourneysResult)
	common.RespondWithMeta(w, http.StatusOK, page.Journeys, &common.MetaInfo{
		RequestID:  r.Header.Get("X-Request-ID"),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, page.TotalCount),
	})
}

// GetJourney handles GET /journeys/{id}
func (h *JourneyHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.respondJourney(w, r, userID, chi.URLParam(r, "id"), http.StatusOK)
}

// UpdateJourney handles PATCH /journeys/{id}
func (h *JourneyHandler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req UpdateJourneyRequest
	if !h.decode(w, r, &req) {
		return
	}

	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.UpdateJourneyCommand{
		UserID:      userID,
		JourneyID:   journeyID,
		Title:       req.Title,
		Description: req.Description,
	}, userID, journeyID, http.StatusOK)
}

// DeleteJourney handles DELETE /journeys/{id}
func (h *JourneyHandler) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	err := h.commandBus.Send(r.Context(), commands.DeleteJourneyCommand{
		UserID:    userID,
		JourneyID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /journeys/{id}/undo
func (h *JourneyHandler) Undo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.UndoJourneyCommand{UserID: userID, JourneyID: journeyID}, userID, journeyID, http.StatusOK)
}

// Redo handles POST /journeys/{id}/redo
func (h *JourneyHandler) Redo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	journeyID := chi.URLParam(r, "id")
	h.send(w, r, commands.RedoJourneyCommand{UserID: userID, JourneyID: journeyID}, userID, journeyID, http.StatusOK)
}
