package handlers

import (
	"errors"
	"net/http"

	"journeymap/application/commands/bus"
	"journeymap/application/queries"
	querybus "journeymap/application/queries/bus"
	"journeymap/pkg/auth"
	"journeymap/pkg/common"
	pkgerrors "journeymap/pkg/errors"

	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies. Scenarios are the largest field.
const maxBodyBytes = 256 << 10

// base holds what every journey handler needs
type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// userID returns the authenticated caller, or writes a 401
func (h base) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("Unauthorized"))
		return "", false
	}
	return user.UserID, true
}

// decode parses the JSON body into v, or writes a 400
func (h base) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("Request body too large").WithCode("BODY_TOO_LARGE"))
			return false
		}
		h.errors.Handle(w, r, pkgerrors.NewValidationError("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// send dispatches cmd and answers with the journey as it is afterwards
func (h base) send(w http.ResponseWriter, r *http.Request, cmd bus.Command, userID, journeyID string, status int) {
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJourney(w, r, userID, journeyID, status)
}

func (h base) respondJourney(w http.ResponseWriter, r *http.Request, userID, journeyID string, status int) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetJourneyQuery{UserID: userID, JourneyID: journeyID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, result)
}
