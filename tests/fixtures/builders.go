package fixtures

import (
	"time"

	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/entities"
	"journeymap/domain/core/valueobjects"
)

// JourneyBuilder helps create test journeys with default values
type JourneyBuilder struct {
	id       valueobjects.JourneyID
	ownerID  string
	title    string
	scenario string
	content  aggregates.Content
	now      time.Time
}

// NewJourneyBuilder starts from a 2x2 dock journey. node-0 and node-1
// share the first cell and form intersection-0.
func NewJourneyBuilder() *JourneyBuilder {
	return &JourneyBuilder{
		id:       valueobjects.NewJourneyID(),
		ownerID:  "test-user-123",
		title:    "Dock",
		scenario: "Trucks arrive at the dock and an AGV unloads them.",
		content:  DockContent(),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *JourneyBuilder) WithOwnerID(ownerID string) *JourneyBuilder {
	b.ownerID = ownerID
	return b
}

func (b *JourneyBuilder) WithTime(now time.Time) *JourneyBuilder {
	b.now = now
	return b
}

// Build creates the journey with no uncommitted events
func (b *JourneyBuilder) Build() (*aggregates.Journey, error) {
	j, err := aggregates.NewJourney(b.id, b.ownerID, b.title, b.scenario, b.content, b.now, nil)
	if err != nil {
		return nil, err
	}
	j.MarkEventsAsCommitted()
	return j, nil
}

// MustBuild creates the journey and panics on error
func (b *JourneyBuilder) MustBuild() *aggregates.Journey {
	j, err := b.Build()
	if err != nil {
		panic(err)
	}
	return j
}

// DockContent returns a fresh copy of the default fixture graph
func DockContent() aggregates.Content {
	return aggregates.Content{
		Actors: []entities.Actor{
			{ID: "actor-0", Name: "Worker", Kind: valueobjects.ActorHuman, Color: entities.ActorPalette[0]},
			{ID: "actor-1", Name: "AGV", Kind: valueobjects.ActorRobot, Color: entities.ActorPalette[1]},
		},
		Phases: []entities.Phase{
			{ID: "phase-0", Name: "Arrive", Order: 1},
			{ID: "phase-1", Name: "Unload", Order: 2},
		},
		Contexts: []entities.Context{
			{ID: "context-0", Name: "Dock", Order: 1},
			{ID: "context-1", Name: "Floor", Order: 2},
		},
		Nodes: []entities.Node{
			{ID: "node-0", ActorID: "actor-0", PhaseID: "phase-0", ContextID: "context-0", Action: "Open gate", Emotion: valueobjects.EmotionNeutral, Position: valueobjects.Position{X: 245, Y: 170}},
			{ID: "node-1", ActorID: "actor-1", PhaseID: "phase-0", ContextID: "context-0", Action: "Dock", Emotion: valueobjects.EmotionPositive, Position: valueobjects.Position{X: 245, Y: 240}},
			{ID: "node-2", ActorID: "actor-1", PhaseID: "phase-1", ContextID: "context-1", Action: "Unload", Emotion: valueobjects.EmotionNegative, Position: valueobjects.Position{X: 595, Y: 450}},
		},
		Edges: []entities.Edge{
			{ID: "edge-0", FromNodeID: "node-0", ToNodeID: "node-1", Description: "signal"},
			{ID: "edge-1", FromNodeID: "node-1", ToNodeID: "node-2", Description: "move"},
		},
		Intersections: []entities.Intersection{
			{ID: "intersection-0", PhaseID: "phase-0", ContextID: "context-0", NodeIDs: []string{"node-0", "node-1"}, Description: "handover"},
		},
	}
}
