package aggregates

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"journeymap/domain/config"
	"journeymap/domain/core/entities"
	"journeymap/domain/core/valueobjects"
	"journeymap/domain/events"
	"journeymap/domain/layout"
	pkgerrors "journeymap/pkg/errors"
)

// Content is everything a journey map draws
type Content struct {
	Actors        []entities.Actor        `json:"actors"`
	Phases        []entities.Phase        `json:"phases"`
	Contexts      []entities.Context      `json:"contexts"`
	Nodes         []entities.Node         `json:"nodes"`
	Edges         []entities.Edge         `json:"edges"`
	Intersections []entities.Intersection `json:"intersections"`
}

// Clone returns a deep copy so snapshots never share slices with the live map
func (c Content) Clone() Content {
	out := Content{
		Actors:        append([]entities.Actor{}, c.Actors...),
		Phases:        append([]entities.Phase{}, c.Phases...),
		Contexts:      append([]entities.Context{}, c.Contexts...),
		Nodes:         append([]entities.Node{}, c.Nodes...),
		Edges:         append([]entities.Edge{}, c.Edges...),
		Intersections: make([]entities.Intersection, len(c.Intersections)),
	}
	for i, in := range c.Intersections {
		in.NodeIDs = append([]string{}, in.NodeIDs...)
		out.Intersections[i] = in
	}
	return out
}

// Counts returns the number of actors, phases, contexts, nodes, edges and intersections
func (c Content) Counts() [6]int {
	return [6]int{len(c.Actors), len(c.Phases), len(c.Contexts), len(c.Nodes), len(c.Edges), len(c.Intersections)}
}

// Grid lays out the lanes of c. The returned permutations map canvas
// position to lane index.
func (c Content) Grid(s layout.Settings) (grid layout.Grid, phasePerm, contextPerm []int) {
	phases := entities.PhaseLanes(c.Phases)
	contexts := entities.ContextLanes(c.Contexts)
	phasePerm = layout.Arrange(phases, s.LaneOrdering)
	contextPerm = layout.Arrange(contexts, s.LaneOrdering)
	grid = layout.BuildGrid(layout.Permute(phases, phasePerm), layout.Permute(contexts, contextPerm), s)
	return grid, phasePerm, contextPerm
}

// Journey is the aggregate root for one generated journey map.
// All edits go through its methods so references stay consistent.
type Journey struct {
	id          valueobjects.JourneyID
	ownerID     string
	title       string
	description string
	scenario    string
	content     Content
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	events      []events.DomainEvent
	cfg         *config.DomainConfig
}

// NewJourney creates a journey from assembled content. An empty title falls
// back to the configured default and the description previews the scenario.
func NewJourney(id valueobjects.JourneyID, ownerID, title, scenario string, content Content, now time.Time, cfg *config.DomainConfig) (*Journey, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return nil, pkgerrors.ErrScenarioRequired
	}
	if utf8.RuneCountInString(scenario) > cfg.MaxScenarioLength {
		return nil, fmt.Errorf("%w: %d characters allowed", pkgerrors.ErrScenarioTooLong, cfg.MaxScenarioLength)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = cfg.DefaultJourneyTitle
	}
	if utf8.RuneCountInString(title) > cfg.MaxTitleLength {
		return nil, fmt.Errorf("%w: %d characters allowed", pkgerrors.ErrTitleTooLong, cfg.MaxTitleLength)
	}

	j := &Journey{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		description: Preview(scenario, cfg.DescriptionPreviewRunes),
		scenario:    scenario,
		content:     normalize(content),
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		cfg:         cfg,
	}

	j.addEvent(events.NewJourneyCreated(id.String(), ownerID, title, j.content.Counts(), j.version, now))
	return j, nil
}

// Preview returns the first n runes of s followed by "...".
func Preview(s string, n int) string {
	if n <= 0 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

// Snapshot is the serialized form of a journey, used for storage, history and the wire
type Snapshot struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Scenario    string    `json:"scenario"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Content
}

// Snapshot captures the current state of the journey
func (j *Journey) Snapshot() Snapshot {
	return Snapshot{
		ID:          j.id.String(),
		OwnerID:     j.ownerID,
		Title:       j.title,
		Description: j.description,
		Scenario:    j.scenario,
		Version:     j.version,
		CreatedAt:   j.createdAt,
		UpdatedAt:   j.updatedAt,
		Content:     j.content.Clone(),
	}
}

// FromSnapshot recreates a journey from stored data
func FromSnapshot(s Snapshot, cfg *config.DomainConfig) (*Journey, error) {
	id, err := valueobjects.NewJourneyIDFromString(s.ID)
	if err != nil {
		return nil, err
	}
	if s.OwnerID == "" {
		return nil, fmt.Errorf("journey %s: owner required for reconstruction", s.ID)
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	version := s.Version
	if version < 1 {
		version = 1
	}

	return &Journey{
		id:          id,
		ownerID:     s.OwnerID,
		title:       s.Title,
		description: s.Description,
		scenario:    s.Scenario,
		content:     normalize(s.Content.Clone()),
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		version:     version,
		cfg:         cfg,
	}, nil
}

// MarshalJSON renders the journey in its wire format
func (j *Journey) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Snapshot())
}

func (j *Journey) ID() valueobjects.JourneyID { return j.id }
func (j *Journey) OwnerID() string            { return j.ownerID }
func (j *Journey) Title() string              { return j.title }
func (j *Journey) Description() string        { return j.description }
func (j *Journey) Scenario() string           { return j.scenario }
func (j *Journey) CreatedAt() time.Time       { return j.createdAt }
func (j *Journey) UpdatedAt() time.Time       { return j.updatedAt }
func (j *Journey) Version() int               { return j.version }

// Content returns a copy of the drawn content
func (j *Journey) Content() Content {
	return j.content.Clone()
}

// Node returns the node with the given id
func (j *Journey) Node(nodeID string) (entities.Node, error) {
	i := j.nodeIndex(nodeID)
	if i < 0 {
		return entities.Node{}, fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, nodeID)
	}
	return j.content.Nodes[i], nil
}

// Grid builds the lane geometry for the journey's current phases and contexts.
func (j *Journey) Grid(s layout.Settings) (grid layout.Grid, phasePerm, contextPerm []int) {
	return j.content.Grid(s)
}

// Rename changes the title and description. Nil leaves a field untouched.
func (j *Journey) Rename(title, description *string, now time.Time) error {
	if title == nil && description == nil {
		return pkgerrors.ErrEmptyUpdate
	}

	if description != nil && utf8.RuneCountInString(*description) > j.cfg.MaxDescriptionLength {
		return fmt.Errorf("%w: description allows %d characters", pkgerrors.ErrFieldTooLong, j.cfg.MaxDescriptionLength)
	}

	var fields []string
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			t = j.cfg.DefaultJourneyTitle
		}
		if utf8.RuneCountInString(t) > j.cfg.MaxTitleLength {
			return fmt.Errorf("%w: %d characters allowed", pkgerrors.ErrTitleTooLong, j.cfg.MaxTitleLength)
		}
		j.title = t
		fields = append(fields, "title")
	}
	if description != nil {
		j.description = *description
		fields = append(fields, "description")
	}

	j.touch(now)
	j.addEvent(events.NewJourneyUpdated(j.id.String(), j.ownerID, fields, j.version, now))
	return nil
}

// MoveNode drops a node at pos. The cell is re-derived from the node center
// and intersections are recomputed for the new arrangement.
func (j *Journey) MoveNode(nodeID string, pos valueobjects.Position, s layout.Settings, now time.Time) (entities.Node, error) {
	i := j.nodeIndex(nodeID)
	if i < 0 {
		return entities.Node{}, fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, nodeID)
	}
	if _, err := valueobjects.NewPosition(pos.X, pos.Y); err != nil {
		return entities.Node{}, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidNodePosition, err)
	}

	node := &j.content.Nodes[i]
	old := node.Position
	node.Position = pos.Round()

	grid, phasePerm, contextPerm := j.Grid(s)
	halfW, halfH := s.HalfNode()
	p, c := grid.CellAt(node.Position.Translate(halfW, halfH))
	if p >= 0 {
		node.PhaseID = j.content.Phases[phasePerm[p]].ID
	}
	if c >= 0 {
		node.ContextID = j.content.Contexts[contextPerm[c]].ID
	}

	j.RecomputeIntersections()
	j.touch(now)
	j.addEvent(events.NewNodeMoved(j.id.String(), nodeID, old, node.Position, node.PhaseID, node.ContextID, j.version, now))
	return *node, nil
}

// NodePatch carries optional node edits
type NodePatch struct {
	Action       *string
	Emotion      *string
	EmotionScore *float64
	PainPoint    *string
	Opportunity  *string
}

// IsEmpty reports whether the patch changes nothing
func (p NodePatch) IsEmpty() bool {
	return p.Action == nil && p.Emotion == nil && p.EmotionScore == nil && p.PainPoint == nil && p.Opportunity == nil
}

// UpdateNode applies a text or emotion edit
func (j *Journey) UpdateNode(nodeID string, patch NodePatch, now time.Time) (entities.Node, error) {
	if patch.IsEmpty() {
		return entities.Node{}, pkgerrors.ErrEmptyUpdate
	}
	i := j.nodeIndex(nodeID)
	if i < 0 {
		return entities.Node{}, fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, nodeID)
	}

	texts := []struct {
		name  string
		value *string
	}{{"action", patch.Action}, {"painPoint", patch.PainPoint}, {"opportunity", patch.Opportunity}}
	for _, t := range texts {
		if t.value != nil && utf8.RuneCountInString(*t.value) > j.cfg.MaxTextFieldLength {
			return entities.Node{}, fmt.Errorf("%w: %s allows %d characters", pkgerrors.ErrFieldTooLong, t.name, j.cfg.MaxTextFieldLength)
		}
	}

	var emotion valueobjects.Emotion
	if patch.Emotion != nil {
		emotion = valueobjects.Emotion(strings.ToLower(strings.TrimSpace(*patch.Emotion)))
		if !emotion.IsValid() {
			return entities.Node{}, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidEmotion, *patch.Emotion)
		}
	}

	node := &j.content.Nodes[i]
	var fields []string
	if patch.Action != nil {
		node.Action = *patch.Action
		fields = append(fields, "action")
	}
	if patch.Emotion != nil {
		node.Emotion = emotion
		fields = append(fields, "emotion")
	}
	if patch.EmotionScore != nil {
		node.EmotionScore = valueobjects.ClampScore(*patch.EmotionScore)
		fields = append(fields, "emotionScore")
	}
	if patch.PainPoint != nil {
		node.PainPoint = *patch.PainPoint
		fields = append(fields, "painPoint")
	}
	if patch.Opportunity != nil {
		node.Opportunity = *patch.Opportunity
		fields = append(fields, "opportunity")
	}

	j.touch(now)
	j.addEvent(events.NewNodeUpdated(j.id.String(), nodeID, fields, j.version, now))
	return *node, nil
}

// DeleteNode removes a node, the edges touching it and its intersection
// memberships. Intersections left without nodes are removed too.
func (j *Journey) DeleteNode(nodeID string, now time.Time) error {
	i := j.nodeIndex(nodeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, nodeID)
	}
	j.content.Nodes = append(j.content.Nodes[:i], j.content.Nodes[i+1:]...)

	var removedEdges []string
	edges := j.content.Edges[:0]
	for _, e := range j.content.Edges {
		if e.Touches(nodeID) {
			removedEdges = append(removedEdges, e.ID)
			continue
		}
		edges = append(edges, e)
	}
	j.content.Edges = edges

	var removedIntersections []string
	intersections := j.content.Intersections[:0]
	for _, in := range j.content.Intersections {
		ids := in.NodeIDs[:0]
		for _, id := range in.NodeIDs {
			if id != nodeID {
				ids = append(ids, id)
			}
		}
		in.NodeIDs = ids
		if len(ids) == 0 {
			removedIntersections = append(removedIntersections, in.ID)
			continue
		}
		intersections = append(intersections, in)
	}
	j.content.Intersections = intersections

	j.touch(now)
	j.addEvent(events.NewNodeDeleted(j.id.String(), nodeID, removedEdges, removedIntersections, j.version, now))
	return nil
}

// ConnectNodes adds a directed edge between two existing nodes
func (j *Journey) ConnectNodes(fromID, toID, description string, now time.Time) (entities.Edge, error) {
	if err := j.checkConnection(fromID, toID, ""); err != nil {
		return entities.Edge{}, err
	}
	if len(j.content.Edges) >= j.cfg.MaxEdgesPerJourney {
		return entities.Edge{}, pkgerrors.ErrEdgeLimitExceeded
	}

	edge := entities.Edge{
		ID:          j.nextEdgeID(),
		FromNodeID:  fromID,
		ToNodeID:    toID,
		Description: description,
	}
	j.content.Edges = append(j.content.Edges, edge)

	j.touch(now)
	j.addEvent(events.NewEdgeCreated(j.id.String(), edge.ID, fromID, toID, j.version, now))
	return edge, nil
}

// ReconnectEdge moves an edge's endpoints to other nodes
func (j *Journey) ReconnectEdge(edgeID, fromID, toID string, now time.Time) (entities.Edge, error) {
	i := j.edgeIndex(edgeID)
	if i < 0 {
		return entities.Edge{}, fmt.Errorf("%w: %s", pkgerrors.ErrEdgeNotFound, edgeID)
	}
	if err := j.checkConnection(fromID, toID, edgeID); err != nil {
		return entities.Edge{}, err
	}

	edge := &j.content.Edges[i]
	edge.FromNodeID = fromID
	edge.ToNodeID = toID

	j.touch(now)
	j.addEvent(events.NewEdgeReconnected(j.id.String(), edgeID, fromID, toID, j.version, now))
	return *edge, nil
}

// DeleteEdge removes an edge
func (j *Journey) DeleteEdge(edgeID string, now time.Time) error {
	i := j.edgeIndex(edgeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrEdgeNotFound, edgeID)
	}
	j.content.Edges = append(j.content.Edges[:i], j.content.Edges[i+1:]...)

	j.touch(now)
	j.addEvent(events.NewEdgeDeleted(j.id.String(), edgeID, j.version, now))
	return nil
}

// RecomputeIntersections rebuilds intersections from the current node cells
func (j *Journey) RecomputeIntersections() {
	j.content.Intersections = DeriveIntersections(j.content.Nodes, j.content.Intersections)
}

// DeriveIntersections returns one intersection per cell holding at least two
// nodes, in order of first node appearance. A cell that already had a record
// keeps its id and description.
func DeriveIntersections(nodes []entities.Node, existing []entities.Intersection) []entities.Intersection {
	known := make(map[entities.Cell]entities.Intersection, len(existing))
	for _, in := range existing {
		if _, dup := known[in.Cell()]; !dup {
			known[in.Cell()] = in
		}
	}

	var order []entities.Cell
	members := make(map[entities.Cell][]string)
	for _, n := range nodes {
		cell := n.Cell()
		if _, seen := members[cell]; !seen {
			order = append(order, cell)
		}
		members[cell] = append(members[cell], n.ID)
	}

	out := make([]entities.Intersection, 0)
	for _, cell := range order {
		ids := members[cell]
		if len(ids) < 2 {
			continue
		}
		in, ok := known[cell]
		if !ok {
			in = entities.Intersection{
				ID:        IntersectionID(cell),
				PhaseID:   cell.PhaseID,
				ContextID: cell.ContextID,
			}
		}
		in.NodeIDs = ids
		out = append(out, in)
	}
	return out
}

// IntersectionID is the id given to a derived intersection
func IntersectionID(cell entities.Cell) string {
	return "intersection-" + cell.PhaseID + "-" + cell.ContextID
}

// Restore replaces title, description and content with a history snapshot.
// Identity, owner and creation time are kept.
func (j *Journey) Restore(s Snapshot, direction string, now time.Time) {
	j.title = s.Title
	j.description = s.Description
	j.content = normalize(s.Content.Clone())

	j.touch(now)
	j.addEvent(events.NewJourneyRestored(j.id.String(), j.ownerID, direction, j.version, now))
}

// MarkDeleted records the deletion event before the repository removes the journey
func (j *Journey) MarkDeleted(now time.Time) {
	j.addEvent(events.NewJourneyDeleted(j.id.String(), j.ownerID, j.version, now))
}

// GetUncommittedEvents returns all uncommitted domain events
func (j *Journey) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(j.events))
	copy(out, j.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (j *Journey) MarkEventsAsCommitted() {
	j.events = []events.DomainEvent{}
}

// Private helper methods

func (j *Journey) addEvent(event events.DomainEvent) {
	j.events = append(j.events, event)
}

func (j *Journey) touch(now time.Time) {
	j.updatedAt = now
	j.version++
}

func (j *Journey) nodeIndex(id string) int {
	for i, n := range j.content.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (j *Journey) edgeIndex(id string) int {
	for i, e := range j.content.Edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// checkConnection validates endpoints; skipEdge is ignored in the duplicate check.
func (j *Journey) checkConnection(fromID, toID, skipEdge string) error {
	if j.nodeIndex(fromID) < 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, fromID)
	}
	if j.nodeIndex(toID) < 0 {
		return fmt.Errorf("%w: %s", pkgerrors.ErrNodeNotFound, toID)
	}
	if fromID == toID && !j.cfg.AllowSelfConnections {
		return pkgerrors.ErrSelfReferentialEdge
	}
	if !j.cfg.AllowDuplicateEdges {
		for _, e := range j.content.Edges {
			if e.ID != skipEdge && e.FromNodeID == fromID && e.ToNodeID == toID {
				return fmt.Errorf("%w: %s", pkgerrors.ErrDuplicateEdge, e.ID)
			}
		}
	}
	return nil
}

func (j *Journey) nextEdgeID() string {
	next := 0
	for _, e := range j.content.Edges {
		if n, ok := strings.CutPrefix(e.ID, "edge-"); ok {
			if v, err := strconv.Atoi(n); err == nil && v+1 > next {
				next = v + 1
			}
		}
	}
	return "edge-" + strconv.Itoa(next)
}

// normalize replaces nil slices so the wire format always carries arrays
func normalize(c Content) Content {
	if c.Actors == nil {
		c.Actors = []entities.Actor{}
	}
	if c.Phases == nil {
		c.Phases = []entities.Phase{}
	}
	if c.Contexts == nil {
		c.Contexts = []entities.Context{}
	}
	if c.Nodes == nil {
		c.Nodes = []entities.Node{}
	}
	if c.Edges == nil {
		c.Edges = []entities.Edge{}
	}
	if c.Intersections == nil {
		c.Intersections = []entities.Intersection{}
	}
	for i := range c.Intersections {
		if c.Intersections[i].NodeIDs == nil {
			c.Intersections[i].NodeIDs = []string{}
		}
	}
	return c
}

// SortedByUpdate orders journeys newest first, ties by ID
func SortedByUpdate(journeys []*Journey) {
	sort.SliceStable(journeys, func(a, b int) bool {
		ta, tb := journeys[a].updatedAt, journeys[b].updatedAt
		if ta.Equal(tb) {
			return journeys[a].id.String() < journeys[b].id.String()
		}
		return ta.After(tb)
	})
}
