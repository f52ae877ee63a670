package extraction

import "fmt"

// Result gathers every category of one extraction for one-shot assembly.
type Result struct {
	Actors        []RawActor
	Phases        []RawPhase
	Contexts      []RawContext
	Nodes         []RawNode
	Edges         []RawEdge
	Intersections []RawIntersection
}

// Apply folds a data event into the result. Terminal events are ignored.
func (r *Result) Apply(ev Event) error {
	switch e := ev.(type) {
	case ActorsExtracted:
		r.Actors = e.Actors
	case PhasesExtracted:
		r.Phases = e.Phases
	case ContextsExtracted:
		r.Contexts = e.Contexts
	case NodesExtracted:
		r.Nodes = e.Nodes
	case EdgesExtracted:
		r.Edges = e.Edges
	case IntersectionsExtracted:
		r.Intersections = e.Intersections
	case Completed, Failed:
	default:
		return fmt.Errorf("unknown extraction event %T", ev)
	}
	return nil
}
