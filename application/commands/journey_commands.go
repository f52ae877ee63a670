package commands

import (
	"strings"

	"journeymap/application/ports"
	pkgerrors "journeymap/pkg/errors"
	"journeymap/pkg/utils"
)

// CreateJourneyCommand generates a journey from a scenario in one request.
// JourneyID is chosen by the caller so it can read the journey back.
type CreateJourneyCommand struct {
	JourneyID string `json:"journey_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required"`
	Scenario  string `json:"scenario" validate:"required,max=50000"`
	Title     string `json:"title" validate:"max=200"`
}

// Validate validates the command
func (c CreateJourneyCommand) Validate() error {
	return validateScenario(c, c.Scenario)
}

// StreamJourneyCommand generates a journey and pushes progress to Sink
type StreamJourneyCommand struct {
	JourneyID string          `json:"journey_id" validate:"required,uuid"`
	UserID    string          `json:"user_id" validate:"required"`
	Scenario  string          `json:"scenario" validate:"required,max=50000"`
	Title     string          `json:"title" validate:"max=200"`
	Sink      ports.EventSink `json:"-" validate:"required"`
}

// Validate validates the command
func (c StreamJourneyCommand) Validate() error {
	return validateScenario(c, c.Scenario)
}

// UpdateJourneyCommand renames a journey
type UpdateJourneyCommand struct {
	UserID      string  `json:"user_id" validate:"required"`
	JourneyID   string  `json:"journey_id" validate:"required,uuid"`
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// Validate validates the command
func (c UpdateJourneyCommand) Validate() error {
	if c.Title == nil && c.Description == nil {
		return pkgerrors.NewValidationError("title or description is required")
	}
	return validate(c)
}

// DeleteJourneyCommand removes a journey
type DeleteJourneyCommand struct {
	UserID    string `json:"user_id" validate:"required"`
	JourneyID string `json:"journey_id" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteJourneyCommand) Validate() error {
	return validate(c)
}

// UndoJourneyCommand steps a journey back one edit
type UndoJourneyCommand struct {
	UserID    string `json:"user_id" validate:"required"`
	JourneyID string `json:"journey_id" validate:"required,uuid"`
}

// Validate validates the command
func (c UndoJourneyCommand) Validate() error {
	return validate(c)
}

// RedoJourneyCommand re-applies an undone edit
type RedoJourneyCommand struct {
	UserID    string `json:"user_id" validate:"required"`
	JourneyID string `json:"journey_id" validate:"required,uuid"`
}

// Validate validates the command
func (c RedoJourneyCommand) Validate() error {
	return validate(c)
}

// validateScenario rejects whitespace-only scenarios before checking tags
func validateScenario(cmd interface{}, scenario string) error {
	if strings.TrimSpace(scenario) == "" {
		return pkgerrors.NewValidationError("scenario is required").WithCode("SCENARIO_REQUIRED")
	}
	return validate(cmd)
}

func validate(cmd interface{}) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}
