package extraction

import (
	"encoding/json"
	"fmt"
)

// Event is one step of an extraction. The set of implementations is closed:
// the six category events, Completed and Failed.
type Event interface {
	event()
}

// ActorsExtracted carries the complete actor list
type ActorsExtracted struct{ Actors []RawActor }

// PhasesExtracted carries the complete phase list
type PhasesExtracted struct{ Phases []RawPhase }

// ContextsExtracted carries the complete context list
type ContextsExtracted struct{ Contexts []RawContext }

// NodesExtracted carries the complete node list
type NodesExtracted struct{ Nodes []RawNode }

// EdgesExtracted carries the complete connector list
type EdgesExtracted struct{ Edges []RawEdge }

// IntersectionsExtracted carries the complete intersection list
type IntersectionsExtracted struct{ Intersections []RawIntersection }

// Completed signals the model finished; categories never seen stay empty.
type Completed struct{}

// Failed signals a terminal transport failure.
type Failed struct{ Err error }

func (ActorsExtracted) event()        {}
func (PhasesExtracted) event()        {}
func (ContextsExtracted) event()      {}
func (NodesExtracted) event()         {}
func (EdgesExtracted) event()         {}
func (IntersectionsExtracted) event() {}
func (Completed) event()              {}
func (Failed) event()                 {}

// CategoryOf returns the category a data event carries. Terminal events
// report false.
func CategoryOf(ev Event) (Category, bool) {
	switch ev.(type) {
	case ActorsExtracted:
		return CategoryActors, true
	case PhasesExtracted:
		return CategoryPhases, true
	case ContextsExtracted:
		return CategoryContexts, true
	case NodesExtracted:
		return CategoryNodes, true
	case EdgesExtracted:
		return CategoryEdges, true
	case IntersectionsExtracted:
		return CategoryIntersections, true
	default:
		return 0, false
	}
}

// decode parses a completed array into the event of its category.
func decode(c Category, raw json.RawMessage) (Event, error) {
	switch c {
	case CategoryActors:
		var v []RawActor
		err := json.Unmarshal(raw, &v)
		return ActorsExtracted{Actors: v}, err
	case CategoryPhases:
		var v []RawPhase
		err := json.Unmarshal(raw, &v)
		return PhasesExtracted{Phases: v}, err
	case CategoryContexts:
		var v []RawContext
		err := json.Unmarshal(raw, &v)
		return ContextsExtracted{Contexts: v}, err
	case CategoryNodes:
		var v []RawNode
		err := json.Unmarshal(raw, &v)
		return NodesExtracted{Nodes: v}, err
	case CategoryEdges:
		var v []RawEdge
		err := json.Unmarshal(raw, &v)
		return EdgesExtracted{Edges: v}, err
	case CategoryIntersections:
		var v []RawIntersection
		err := json.Unmarshal(raw, &v)
		return IntersectionsExtracted{Intersections: v}, err
	default:
		return nil, fmt.Errorf("unknown category %d", c)
	}
}

// empty returns the event for a category that carries no items.
func empty(c Category) Event {
	ev, _ := decode(c, json.RawMessage("[]"))
	return ev
}
