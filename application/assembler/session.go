package assembler

import (
	"errors"
	"fmt"
	"strconv"

	"journeymap/application/extraction"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/entities"
	"journeymap/domain/core/valueobjects"
	"journeymap/domain/layout"
	"journeymap/domain/resolve"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by Apply after Completed or Failed
var ErrSessionClosed = errors.New("assembly session already finished")

// Update is one category ready to be published to the client
type Update struct {
	Category extraction.Category
	Items    interface{}
	// Grid is set on phase and context updates
	Grid *layout.Grid
}

type reference struct {
	target extraction.Category
	field  string
	hint   resolve.IDHint
}

var (
	actorRef   = reference{extraction.CategoryActors, "userName", resolve.IDHint{Prefixes: []string{"actor", "user"}, Letters: "AU"}}
	phaseRef   = reference{extraction.CategoryPhases, "phaseName", resolve.IDHint{Prefixes: []string{"phase"}, Letters: "P"}}
	contextRef = reference{extraction.CategoryContexts, "contextName", resolve.IDHint{Prefixes: []string{"context"}, Letters: "C"}}
)

// Session assembles one streaming extraction. It has a single writer and
// no locking: feed it events from one goroutine.
//
// Nodes wait until actors, phases and contexts have all arrived; edges and
// intersections wait for nodes. On Completed whatever is still waiting is
// built against what is there, dropping items that cannot be resolved.
type Session struct {
	asm      *Assembler
	meta     Meta
	settings layout.Settings
	logger   *zap.Logger

	content     aggregates.Content
	grid        layout.Grid
	phaseSlot   []int
	contextSlot []int

	seen             map[extraction.Category]bool
	rawNodes         []extraction.RawNode
	rawEdges         []extraction.RawEdge
	rawIntersections []extraction.RawIntersection
	nodesPending     bool
	edgesPending     bool
	sectionsPending  bool
	nodesBuilt       bool
	sectionsBuilt    bool
	nodeIDs          []string

	report Report
	done   bool
	err    error
}

// Apply folds one extraction event into the session and returns the
// categories that became ready because of it, in dependency order.
func (s *Session) Apply(ev extraction.Event) ([]Update, error) {
	if s.done {
		return nil, ErrSessionClosed
	}

	if c, ok := extraction.CategoryOf(ev); ok {
		if s.seen[c] {
			s.logger.Debug("Ignoring repeated category", zap.String("category", c.String()))
			return nil, nil
		}
		s.seen[c] = true
	}

	var out []Update
	switch e := ev.(type) {
	case extraction.ActorsExtracted:
		out = append(out, s.buildActors(e.Actors))
	case extraction.PhasesExtracted:
		out = append(out, s.buildPhases(e.Phases))
	case extraction.ContextsExtracted:
		out = append(out, s.buildContexts(e.Contexts))
	case extraction.NodesExtracted:
		s.rawNodes, s.nodesPending = e.Nodes, true
	case extraction.EdgesExtracted:
		s.rawEdges, s.edgesPending = e.Edges, true
	case extraction.IntersectionsExtracted:
		s.rawIntersections, s.sectionsPending = e.Intersections, true
	case extraction.Completed:
		s.done = true
		return s.flush(true), nil
	case extraction.Failed:
		s.done = true
		s.err = e.Err
		return nil, e.Err
	default:
		return nil, fmt.Errorf("unknown extraction event %T", ev)
	}

	return append(out, s.flush(false)...), nil
}

// Finish builds the journey from everything applied so far. Categories that
// never arrived are empty.
func (s *Session) Finish() (*aggregates.Journey, Report, error) {
	if s.err != nil {
		return nil, s.report, s.err
	}
	if !s.done {
		s.done = true
		s.flush(true)
	}

	j, err := aggregates.NewJourney(s.meta.JourneyID, s.meta.OwnerID, s.meta.Title, s.meta.Scenario, s.content, s.meta.Now, s.asm.domain)
	if err != nil {
		return nil, s.report, err
	}

	counts := s.content.Counts()
	s.logger.Info("Journey assembled",
		zap.Int("actors", counts[0]),
		zap.Int("phases", counts[1]),
		zap.Int("contexts", counts[2]),
		zap.Int("nodes", counts[3]),
		zap.Int("edges", counts[4]),
		zap.Int("intersections", counts[5]),
		zap.Int("unresolved", len(s.report.Resolutions)),
		zap.Int("dropped", len(s.report.Dropped)),
	)
	return j, s.report, nil
}

// Report returns the resolution report collected so far
func (s *Session) Report() Report { return s.report }

// Grid returns the current lane geometry
func (s *Session) Grid() layout.Grid { return s.grid }

// JourneyID returns the id the finished journey will carry
func (s *Session) JourneyID() valueobjects.JourneyID { return s.meta.JourneyID }

func (s *Session) flush(force bool) []Update {
	var out []Update

	lanesReady := s.seen[extraction.CategoryActors] && s.seen[extraction.CategoryPhases] && s.seen[extraction.CategoryContexts]
	if s.nodesPending && (force || lanesReady) {
		out = append(out, s.buildNodes(s.rawNodes))
		s.nodesPending = false
	}
	if force && !s.nodesBuilt {
		s.nodesBuilt = true
		s.nodeIDs = nil
	}
	if !s.nodesBuilt {
		return out
	}

	if s.edgesPending {
		out = append(out, s.buildEdges(s.rawEdges))
		s.edgesPending = false
	}
	if s.sectionsPending || (force && !s.sectionsBuilt && s.asm.policy == Derive) {
		out = append(out, s.buildIntersections(s.rawIntersections))
		s.sectionsPending = false
	}
	return out
}

func (s *Session) buildActors(raw []extraction.RawActor) Update {
	actors := make([]entities.Actor, len(raw))
	for i, r := range raw {
		actors[i] = entities.Actor{
			ID:          "actor-" + strconv.Itoa(i),
			Name:        r.Name,
			Kind:        valueobjects.ParseActorKind(r.Type),
			Color:       entities.PaletteColor(entities.ActorPalette, i),
			Description: r.Description,
		}
	}
	s.content.Actors = actors
	s.asm.recordCategory(extraction.CategoryActors, len(actors))
	return Update{Category: extraction.CategoryActors, Items: actors}
}

func (s *Session) buildPhases(raw []extraction.RawPhase) Update {
	phases := make([]entities.Phase, len(raw))
	for i, r := range raw {
		phases[i] = entities.Phase{
			ID:       "phase-" + strconv.Itoa(i),
			Name:     r.Name,
			Order:    r.Order.Int(),
			Duration: r.Duration,
		}
	}
	s.content.Phases = phases
	s.relayout()
	s.asm.recordCategory(extraction.CategoryPhases, len(phases))
	grid := s.grid
	return Update{Category: extraction.CategoryPhases, Items: phases, Grid: &grid}
}

func (s *Session) buildContexts(raw []extraction.RawContext) Update {
	contexts := make([]entities.Context, len(raw))
	for i, r := range raw {
		contexts[i] = entities.Context{
			ID:          "context-" + strconv.Itoa(i),
			Name:        r.Name,
			Description: r.Description,
			Order:       r.Order.Int(),
			Color:       entities.PaletteColor(entities.ContextPalette, i),
		}
	}
	s.content.Contexts = contexts
	s.relayout()
	s.asm.recordCategory(extraction.CategoryContexts, len(contexts))
	grid := s.grid
	return Update{Category: extraction.CategoryContexts, Items: contexts, Grid: &grid}
}

// relayout rebuilds the grid from the lanes known so far and remembers the
// canvas slot of every lane.
func (s *Session) relayout() {
	grid, phasePerm, contextPerm := s.content.Grid(s.settings)
	s.grid = grid
	s.phaseSlot = layout.Invert(phasePerm)
	s.contextSlot = layout.Invert(contextPerm)
}

func (s *Session) buildNodes(raw []extraction.RawNode) Update {
	s.nodesBuilt = true
	s.nodeIDs = make([]string, len(raw))

	actorCands := actorNames(s.content.Actors)
	phaseCands := phaseNames(s.content.Phases)
	contextCands := contextNames(s.content.Contexts)

	nodes := make([]entities.Node, 0, len(raw))
	cells := make(map[[2]int][]int)
	var order [][2]int

	for i, r := range raw {
		if len(nodes) >= s.asm.domain.MaxNodesPerJourney {
			s.dropItem(extraction.CategoryNodes, i, ReasonNodeLimit)
			continue
		}
		a, okA := s.resolve(extraction.CategoryNodes, i, actorRef, actorCands, r.UserName)
		p, okP := s.resolve(extraction.CategoryNodes, i, phaseRef, phaseCands, r.PhaseName)
		c, okC := s.resolve(extraction.CategoryNodes, i, contextRef, contextCands, r.ContextName)
		if !okA || !okP || !okC {
			s.dropItem(extraction.CategoryNodes, i, ReasonUnresolved)
			continue
		}

		id := "node-" + strconv.Itoa(i)
		s.nodeIDs[i] = id

		key := [2]int{s.phaseSlot[p], s.contextSlot[c]}
		if _, ok := cells[key]; !ok {
			order = append(order, key)
		}
		cells[key] = append(cells[key], len(nodes))

		nodes = append(nodes, entities.Node{
			ID:           id,
			ActorID:      s.content.Actors[a].ID,
			PhaseID:      s.content.Phases[p].ID,
			ContextID:    s.content.Contexts[c].ID,
			Action:       r.Action,
			Emotion:      valueobjects.ParseEmotion(r.Emotion),
			EmotionScore: valueobjects.ClampScore(float64(r.EmotionScore)),
			PainPoint:    r.PainPoint,
			Opportunity:  r.Opportunity,
		})
	}

	// Cell membership is fixed for the whole batch before anything is placed.
	for _, key := range order {
		members := cells[key]
		for k, idx := range members {
			nodes[idx].Position = s.grid.NodePosition(key[0], key[1], k, len(members))
		}
	}

	s.content.Nodes = nodes
	s.asm.recordCategory(extraction.CategoryNodes, len(nodes))
	return Update{Category: extraction.CategoryNodes, Items: nodes}
}

func (s *Session) buildEdges(raw []extraction.RawEdge) Update {
	edges := make([]entities.Edge, 0, len(raw))
	for i, r := range raw {
		if len(edges) >= s.asm.domain.MaxEdgesPerJourney {
			s.dropItem(extraction.CategoryEdges, i, ReasonEdgeLimit)
			continue
		}
		from, reason := s.nodeAt(r.FromNodeIndex.Int())
		if reason != "" {
			s.dropItem(extraction.CategoryEdges, i, reason)
			continue
		}
		to, reason := s.nodeAt(r.ToNodeIndex.Int())
		if reason != "" {
			s.dropItem(extraction.CategoryEdges, i, reason)
			continue
		}
		edges = append(edges, entities.Edge{
			ID:          "edge-" + strconv.Itoa(i),
			FromNodeID:  from,
			ToNodeID:    to,
			Description: r.Description,
		})
	}

	s.content.Edges = edges
	s.asm.recordCategory(extraction.CategoryEdges, len(edges))
	return Update{Category: extraction.CategoryEdges, Items: edges}
}

// nodeAt maps a raw node index to the id of the node built from it
func (s *Session) nodeAt(idx int) (string, string) {
	if idx < 0 || idx >= len(s.nodeIDs) {
		return "", ReasonIndexOutOfRange
	}
	if s.nodeIDs[idx] == "" {
		return "", ReasonNodeDropped
	}
	return s.nodeIDs[idx], ""
}

func (s *Session) buildIntersections(raw []extraction.RawIntersection) Update {
	s.sectionsBuilt = true

	members := make(map[entities.Cell][]string)
	for _, n := range s.content.Nodes {
		members[n.Cell()] = append(members[n.Cell()], n.ID)
	}

	phaseCands := phaseNames(s.content.Phases)
	contextCands := contextNames(s.content.Contexts)

	var suggested []entities.Intersection
	for i, r := range raw {
		p, okP := s.resolve(extraction.CategoryIntersections, i, phaseRef, phaseCands, r.PhaseName)
		c, okC := s.resolve(extraction.CategoryIntersections, i, contextRef, contextCands, r.ContextName)
		if !okP || !okC {
			s.dropItem(extraction.CategoryIntersections, i, ReasonUnresolved)
			continue
		}
		cell := entities.Cell{PhaseID: s.content.Phases[p].ID, ContextID: s.content.Contexts[c].ID}
		ids := append([]string{}, members[cell]...)

		if s.asm.policy == RequireShared && len(ids) < 2 {
			s.dropItem(extraction.CategoryIntersections, i, ReasonTooFewNodes)
			continue
		}

		id := "intersection-" + strconv.Itoa(i)
		if s.asm.policy == Derive {
			id = aggregates.IntersectionID(cell)
		}
		suggested = append(suggested, entities.Intersection{
			ID:          id,
			PhaseID:     cell.PhaseID,
			ContextID:   cell.ContextID,
			NodeIDs:     ids,
			Description: r.Description,
		})
	}

	intersections := suggested
	if s.asm.policy == Derive {
		intersections = aggregates.DeriveIntersections(s.content.Nodes, suggested)
	}
	if intersections == nil {
		intersections = []entities.Intersection{}
	}

	s.content.Intersections = intersections
	s.asm.recordCategory(extraction.CategoryIntersections, len(intersections))
	return Update{Category: extraction.CategoryIntersections, Items: intersections}
}

// resolve looks a named reference up and records anything short of an
// exact match. It fails only when there is nothing to resolve against.
func (s *Session) resolve(source extraction.Category, item int, ref reference, candidates []string, query string) (int, bool) {
	m := resolve.Resolve(candidates, query, ref.hint)
	s.asm.recordResolution(ref.target, m.Quality.String())
	if m.Quality == resolve.MatchNone {
		return -1, false
	}
	if !m.Quality.Confident() {
		s.report.Resolutions = append(s.report.Resolutions, Resolution{
			Category: source.String(),
			Item:     item,
			Field:    ref.field,
			Query:    query,
			Index:    m.Index,
			Quality:  m.Quality.String(),
		})
	}
	if m.Quality == resolve.MatchFallback {
		s.logger.Warn("Reference fell back to first candidate",
			zap.String("category", source.String()),
			zap.Int("item", item),
			zap.String("field", ref.field),
			zap.String("query", query),
		)
	}
	return m.Index, true
}

func (s *Session) dropItem(c extraction.Category, item int, reason string) {
	s.report.drop(c, item, reason)
	s.asm.recordDropped(c, reason)
	s.logger.Warn("Dropped extracted item",
		zap.String("category", c.String()),
		zap.Int("item", item),
		zap.String("reason", reason),
	)
}

func actorNames(actors []entities.Actor) []string {
	out := make([]string, len(actors))
	for i, a := range actors {
		out[i] = a.Name
	}
	return out
}

func phaseNames(phases []entities.Phase) []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Name
	}
	return out
}

func contextNames(contexts []entities.Context) []string {
	out := make([]string, len(contexts))
	for i, c := range contexts {
		out[i] = c.Name
	}
	return out
}
