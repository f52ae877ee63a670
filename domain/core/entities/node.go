package entities

import "journeymap/domain/core/valueobjects"

// Node is one actor's state at one (phase, context) cell
type Node struct {
	ID           string                `json:"id"`
	ActorID      string                `json:"actorId"`
	PhaseID      string                `json:"phaseId"`
	ContextID    string                `json:"contextId"`
	Action       string                `json:"action"`
	Emotion      valueobjects.Emotion  `json:"emotion"`
	EmotionScore float64               `json:"emotionScore"`
	PainPoint    string                `json:"painPoint,omitempty"`
	Opportunity  string                `json:"opportunity,omitempty"`
	Position     valueobjects.Position `json:"position"`
}

// Cell returns the grid cell the node belongs to
func (n Node) Cell() Cell {
	return Cell{PhaseID: n.PhaseID, ContextID: n.ContextID}
}

// Cell identifies a (phase, context) pair
type Cell struct {
	PhaseID   string
	ContextID string
}

// Edge is a directed transition between two nodes
type Edge struct {
	ID          string `json:"id"`
	FromNodeID  string `json:"fromNodeId"`
	ToNodeID    string `json:"toNodeId"`
	Description string `json:"description"`
}

// Touches reports whether the edge starts or ends at nodeID
func (e Edge) Touches(nodeID string) bool {
	return e.FromNodeID == nodeID || e.ToNodeID == nodeID
}

// Intersection marks a cell where several nodes meet
type Intersection struct {
	ID          string   `json:"id"`
	PhaseID     string   `json:"phaseId"`
	ContextID   string   `json:"contextId"`
	NodeIDs     []string `json:"nodeIds"`
	Description string   `json:"description,omitempty"`
}

// Cell returns the grid cell of the intersection
func (i Intersection) Cell() Cell {
	return Cell{PhaseID: i.PhaseID, ContextID: i.ContextID}
}
