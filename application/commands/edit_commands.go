package commands

import (
	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"
)

// MoveNodeCommand drops a node at a new canvas position
type MoveNodeCommand struct {
	UserID    string  `json:"user_id" validate:"required"`
	JourneyID string  `json:"journey_id" validate:"required,uuid"`
	NodeID    string  `json:"node_id" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Validate validates the command
func (c MoveNodeCommand) Validate() error {
	return validate(c)
}

// UpdateNodeCommand edits the text or emotion of a node
type UpdateNodeCommand struct {
	UserID       string   `json:"user_id" validate:"required"`
	JourneyID    string   `json:"journey_id" validate:"required,uuid"`
	NodeID       string   `json:"node_id" validate:"required"`
	Action       *string  `json:"action,omitempty" validate:"omitempty,max=2000"`
	Emotion      *string  `json:"emotion,omitempty" validate:"omitempty,oneof=positive neutral negative"`
	EmotionScore *float64 `json:"emotionScore,omitempty" validate:"omitempty,min=-1,max=1"`
	PainPoint    *string  `json:"painPoint,omitempty" validate:"omitempty,max=2000"`
	Opportunity  *string  `json:"opportunity,omitempty" validate:"omitempty,max=2000"`
}

// Patch returns the node patch the command describes
func (c UpdateNodeCommand) Patch() aggregates.NodePatch {
	return aggregates.NodePatch{
		Action:       c.Action,
		Emotion:      c.Emotion,
		EmotionScore: c.EmotionScore,
		PainPoint:    c.PainPoint,
		Opportunity:  c.Opportunity,
	}
}

// Validate validates the command
func (c UpdateNodeCommand) Validate() error {
	if c.Patch().IsEmpty() {
		return pkgerrors.NewValidationError("at least one node field is required")
	}
	return validate(c)
}

// DeleteNodeCommand removes a node and everything hanging off it
type DeleteNodeCommand struct {
	UserID    string `json:"user_id" validate:"required"`
	JourneyID string `json:"journey_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error {
	return validate(c)
}

// ConnectNodesCommand adds a directed edge between two nodes
type ConnectNodesCommand struct {
	UserID      string `json:"user_id" validate:"required"`
	JourneyID   string `json:"journey_id" validate:"required,uuid"`
	FromNodeID  string `json:"fromNodeId" validate:"required"`
	ToNodeID    string `json:"toNodeId" validate:"required"`
	Description string `json:"description" validate:"max=2000"`
}

// Validate validates the command
func (c ConnectNodesCommand) Validate() error {
	return validate(c)
}

// ReconnectEdgeCommand moves the endpoints of an existing edge
type ReconnectEdgeCommand struct {
	UserID     string `json:"user_id" validate:"required"`
	JourneyID  string `json:"journey_id" validate:"required,uuid"`
	EdgeID     string `json:"edge_id" validate:"required"`
	FromNodeID string `json:"fromNodeId" validate:"required"`
	ToNodeID   string `json:"toNodeId" validate:"required"`
}

// Validate validates the command
func (c ReconnectEdgeCommand) Validate() error {
	return validate(c)
}

// DeleteEdgeCommand removes an edge
type DeleteEdgeCommand struct {
	UserID    string `json:"user_id" validate:"required"`
	JourneyID string `json:"journey_id" validate:"required,uuid"`
	EdgeID    string `json:"edge_id" validate:"required"`
}

// Validate validates the command
func (c DeleteEdgeCommand) Validate() error {
	return validate(c)
}
