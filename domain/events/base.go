package events

import (
	"time"

	"journeymap/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(journeyID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: journeyID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Journey Events

// JourneyCreated is raised when a journey is generated from a scenario
type JourneyCreated struct {
	BaseEvent
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Actors        int    `json:"actors"`
	Phases        int    `json:"phases"`
	Contexts      int    `json:"contexts"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	Intersections int    `json:"intersections"`
}

// NewJourneyCreated creates a JourneyCreated event
func NewJourneyCreated(journeyID, ownerID, title string, counts [6]int, version int, timestamp time.Time) JourneyCreated {
	return JourneyCreated{
		BaseEvent:     newBase(journeyID, "journey.created", version, timestamp),
		OwnerID:       ownerID,
		Title:         title,
		Actors:        counts[0],
		Phases:        counts[1],
		Contexts:      counts[2],
		Nodes:         counts[3],
		Edges:         counts[4],
		Intersections: counts[5],
	}
}

// JourneyUpdated is raised when journey metadata changes
type JourneyUpdated struct {
	BaseEvent
	OwnerID string   `json:"owner_id"`
	Fields  []string `json:"fields"`
}

// NewJourneyUpdated creates a JourneyUpdated event
func NewJourneyUpdated(journeyID, ownerID string, fields []string, version int, timestamp time.Time) JourneyUpdated {
	return JourneyUpdated{
		BaseEvent: newBase(journeyID, "journey.updated", version, timestamp),
		OwnerID:   ownerID,
		Fields:    fields,
	}
}

// JourneyRestored is raised when undo or redo replaces the journey content
type JourneyRestored struct {
	BaseEvent
	OwnerID   string `json:"owner_id"`
	Direction string `json:"direction"`
}

// NewJourneyRestored creates a JourneyRestored event
func NewJourneyRestored(journeyID, ownerID, direction string, version int, timestamp time.Time) JourneyRestored {
	return JourneyRestored{
		BaseEvent: newBase(journeyID, "journey.restored", version, timestamp),
		OwnerID:   ownerID,
		Direction: direction,
	}
}

// JourneyDeleted is raised when a journey is removed
type JourneyDeleted struct {
	BaseEvent
	OwnerID string `json:"owner_id"`
}

// NewJourneyDeleted creates a JourneyDeleted event
func NewJourneyDeleted(journeyID, ownerID string, version int, timestamp time.Time) JourneyDeleted {
	return JourneyDeleted{
		BaseEvent: newBase(journeyID, "journey.deleted", version, timestamp),
		OwnerID:   ownerID,
	}
}

// Node Events

// NodeMoved is raised when a node is dragged, possibly into another cell
type NodeMoved struct {
	BaseEvent
	NodeID      string                `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
	PhaseID     string                `json:"phase_id"`
	ContextID   string                `json:"context_id"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(journeyID, nodeID string, oldPos, newPos valueobjects.Position, phaseID, contextID string, version int, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBase(journeyID, "node.moved", version, timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
		PhaseID:     phaseID,
		ContextID:   contextID,
	}
}

// NodeUpdated is raised when node text or emotion changes
type NodeUpdated struct {
	BaseEvent
	NodeID string   `json:"node_id"`
	Fields []string `json:"fields"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(journeyID, nodeID string, fields []string, version int, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBase(journeyID, "node.updated", version, timestamp),
		NodeID:    nodeID,
		Fields:    fields,
	}
}

// NodeDeleted is raised when a node and everything hanging off it is removed
type NodeDeleted struct {
	BaseEvent
	NodeID               string   `json:"node_id"`
	RemovedEdges         []string `json:"removed_edges,omitempty"`
	RemovedIntersections []string `json:"removed_intersections,omitempty"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(journeyID, nodeID string, edges, intersections []string, version int, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent:            newBase(journeyID, "node.deleted", version, timestamp),
		NodeID:               nodeID,
		RemovedEdges:         edges,
		RemovedIntersections: intersections,
	}
}

// Edge Events

// EdgeCreated is raised when two nodes are connected by hand
type EdgeCreated struct {
	BaseEvent
	EdgeID     string `json:"edge_id"`
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
}

// NewEdgeCreated creates an EdgeCreated event
func NewEdgeCreated(journeyID, edgeID, fromID, toID string, version int, timestamp time.Time) EdgeCreated {
	return EdgeCreated{
		BaseEvent:  newBase(journeyID, "edge.created", version, timestamp),
		EdgeID:     edgeID,
		FromNodeID: fromID,
		ToNodeID:   toID,
	}
}

// EdgeDeleted is raised when an edge is removed
type EdgeDeleted struct {
	BaseEvent
	EdgeID string `json:"edge_id"`
}

// NewEdgeDeleted creates an EdgeDeleted event
func NewEdgeDeleted(journeyID, edgeID string, version int, timestamp time.Time) EdgeDeleted {
	return EdgeDeleted{
		BaseEvent: newBase(journeyID, "edge.deleted", version, timestamp),
		EdgeID:    edgeID,
	}
}

// EdgeReconnected is raised when an edge endpoint is dragged to another node
type EdgeReconnected struct {
	BaseEvent
	EdgeID     string `json:"edge_id"`
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
}

// NewEdgeReconnected creates an EdgeReconnected event
func NewEdgeReconnected(journeyID, edgeID, fromID, toID string, version int, timestamp time.Time) EdgeReconnected {
	return EdgeReconnected{
		BaseEvent:  newBase(journeyID, "edge.reconnected", version, timestamp),
		EdgeID:     edgeID,
		FromNodeID: fromID,
		ToNodeID:   toID,
	}
}
