package assembler

import (
	"errors"
	"testing"
	"time"

	"journeymap/application/extraction"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/entities"
	"journeymap/domain/core/valueobjects"
	"journeymap/domain/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMetrics is a mock implementation of ports.Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordCategory(category string, items int) {
	m.Called(category, items)
}

func (m *MockMetrics) RecordResolution(category, quality string) {
	m.Called(category, quality)
}

func (m *MockMetrics) RecordDropped(category, reason string) {
	m.Called(category, reason)
}

func (m *MockMetrics) RecordGeneration(mode, outcome string, seconds float64) {
	m.Called(mode, outcome, seconds)
}

func (m *MockMetrics) RecordEdit(operation string) {
	m.Called(operation)
}

func (m *MockMetrics) RecordQuery(queryType, outcome string, seconds float64) {
	m.Called(queryType, outcome, seconds)
}

func testMeta() Meta {
	return Meta{
		JourneyID: valueobjects.NewJourneyID(),
		OwnerID:   "user-1",
		Scenario:  "An AGV and a worker unload a truck at the dock.",
		Now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func factoryResult() extraction.Result {
	return extraction.Result{
		Actors: []extraction.RawActor{
			{Name: "Worker", Type: "human"},
			{Name: "AGV", Type: "robot"},
			{Name: "WMS", Type: "mainframe"},
		},
		Phases: []extraction.RawPhase{
			{Name: "Arrival", Order: 1},
			{Name: "Unloading", Order: 2},
		},
		Contexts: []extraction.RawContext{
			{Name: "Dock", Order: 1},
			{Name: "Warehouse Floor", Order: 2},
		},
		Nodes: []extraction.RawNode{
			{UserName: "Worker", PhaseName: "Arrival", ContextName: "Dock", Action: "Opens gate", Emotion: "neutral"},
			{UserName: "AGV", PhaseName: "Arrival", ContextName: "Dock", Action: "Waits", Emotion: "ecstatic", EmotionScore: 7},
			{UserName: "WMS", PhaseName: "Arrival", ContextName: "Dock", Action: "Books slot", Emotion: "positive"},
			{UserName: "AGV", PhaseName: "P2", ContextName: "Floor", Action: "Carries pallet", Emotion: "positive"},
		},
		Edges: []extraction.RawEdge{
			{FromNodeIndex: 0, ToNodeIndex: 1},
			{FromNodeIndex: 1, ToNodeIndex: 3},
			{FromNodeIndex: 3, ToNodeIndex: 9},
		},
		Intersections: []extraction.RawIntersection{
			{PhaseName: "Arrival", ContextName: "Dock", UserNames: []string{"Worker", "AGV"}, Description: "handover"},
			{PhaseName: "Unloading", ContextName: "Warehouse Floor", Description: "lonely"},
		},
	}
}

func newTestAssembler(policy IntersectionPolicy) *Assembler {
	return NewAssembler(StaticSettings(layout.DefaultSettings()), policy, nil, nil, zap.NewNop())
}

func assertReferentialIntegrity(t *testing.T, c aggregates.Content) {
	t.Helper()
	actors, phases, contexts, nodes := map[string]bool{}, map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, a := range c.Actors {
		actors[a.ID] = true
	}
	for _, p := range c.Phases {
		phases[p.ID] = true
	}
	for _, ctx := range c.Contexts {
		contexts[ctx.ID] = true
	}
	for _, n := range c.Nodes {
		nodes[n.ID] = true
		assert.True(t, actors[n.ActorID], "node %s actor %s", n.ID, n.ActorID)
		assert.True(t, phases[n.PhaseID], "node %s phase %s", n.ID, n.PhaseID)
		assert.True(t, contexts[n.ContextID], "node %s context %s", n.ID, n.ContextID)
	}
	for _, e := range c.Edges {
		assert.True(t, nodes[e.FromNodeID], "edge %s from %s", e.ID, e.FromNodeID)
		assert.True(t, nodes[e.ToNodeID], "edge %s to %s", e.ID, e.ToNodeID)
	}
	for _, in := range c.Intersections {
		assert.True(t, phases[in.PhaseID])
		assert.True(t, contexts[in.ContextID])
		for _, id := range in.NodeIDs {
			assert.True(t, nodes[id], "intersection %s node %s", in.ID, id)
		}
	}
}

func TestAssemble_EndToEnd(t *testing.T) {
	// Arrange
	asm := newTestAssembler(KeepSuggested)

	// Act
	j, report, err := asm.Assemble(testMeta(), factoryResult())

	// Assert
	require.NoError(t, err)
	c := j.Content()
	assertReferentialIntegrity(t, c)

	assert.Equal(t, "New Journey Map", j.Title())
	require.Len(t, c.Actors, 3)
	assert.Equal(t, "actor-1", c.Actors[1].ID)
	assert.Equal(t, valueobjects.ActorRobot, c.Actors[1].Kind)
	assert.Equal(t, valueobjects.ActorOther, c.Actors[2].Kind)
	assert.Equal(t, entities.ActorPalette[2], c.Actors[2].Color)
	assert.Equal(t, entities.ContextPalette[1], c.Contexts[1].Color)

	require.Len(t, c.Nodes, 4)
	assert.Equal(t, valueobjects.EmotionNeutral, c.Nodes[1].Emotion)
	assert.Equal(t, 1.0, c.Nodes[1].EmotionScore)
	assert.Equal(t, "phase-1", c.Nodes[3].PhaseID)
	assert.Equal(t, "context-1", c.Nodes[3].ContextID)

	// edge 2 points past the node list
	require.Len(t, c.Edges, 2)
	assert.Equal(t, "edge-0", c.Edges[0].ID)
	assert.Equal(t, "node-3", c.Edges[1].ToNodeID)
	assert.Contains(t, report.Dropped, Drop{Category: "edges", Item: 2, Reason: ReasonIndexOutOfRange})

	require.Len(t, c.Intersections, 2)
	assert.Equal(t, []string{"node-0", "node-1", "node-2"}, c.Intersections[0].NodeIDs)
	assert.Equal(t, []string{"node-3"}, c.Intersections[1].NodeIDs)

	// "Floor" is contained in "Warehouse Floor"
	assert.Contains(t, report.Resolutions, Resolution{
		Category: "nodes", Item: 3, Field: "contextName", Query: "Floor", Index: 1, Quality: "contains",
	})
	assert.Zero(t, report.Fallbacks())
}

func TestAssemble_NoIdenticalCoordinatesInSharedCell(t *testing.T) {
	j, _, err := newTestAssembler(KeepSuggested).Assemble(testMeta(), factoryResult())
	require.NoError(t, err)

	seen := map[entities.Cell]map[valueobjects.Position]bool{}
	for _, n := range j.Content().Nodes {
		if seen[n.Cell()] == nil {
			seen[n.Cell()] = map[valueobjects.Position]bool{}
		}
		assert.False(t, seen[n.Cell()][n.Position], "duplicate position %v", n.Position)
		seen[n.Cell()][n.Position] = true
	}
}

func TestAssemble_LoneNodeSitsOnCellCenter(t *testing.T) {
	j, _, err := newTestAssembler(KeepSuggested).Assemble(testMeta(), factoryResult())
	require.NoError(t, err)

	grid, _, _ := j.Grid(layout.DefaultSettings())
	center := grid.CellCenter(1, 1)
	node, err := j.Node("node-3")
	require.NoError(t, err)
	assert.Equal(t, center.Translate(-60, -30).Round(), node.Position)
}

func TestAssemble_IntersectionPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   IntersectionPolicy
		wantIDs  []string
		wantDesc []string
	}{
		{name: "keep suggested", policy: KeepSuggested, wantIDs: []string{"intersection-0", "intersection-1"}, wantDesc: []string{"handover", "lonely"}},
		{name: "require shared", policy: RequireShared, wantIDs: []string{"intersection-0"}, wantDesc: []string{"handover"}},
		{name: "derive", policy: Derive, wantIDs: []string{"intersection-phase-0-context-0"}, wantDesc: []string{"handover"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, _, err := newTestAssembler(tt.policy).Assemble(testMeta(), factoryResult())
			require.NoError(t, err)

			var ids, descs []string
			for _, in := range j.Content().Intersections {
				ids = append(ids, in.ID)
				descs = append(descs, in.Description)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantDesc, descs)
		})
	}
}

func TestAssemble_DeriveWithoutSuggestions(t *testing.T) {
	result := factoryResult()
	result.Intersections = nil

	j, _, err := newTestAssembler(Derive).Assemble(testMeta(), result)

	require.NoError(t, err)
	in := j.Content().Intersections
	require.Len(t, in, 1)
	assert.Empty(t, in[0].Description)
}

func TestSession_CompletedBeforeNodes(t *testing.T) {
	// Arrange
	s := newTestAssembler(KeepSuggested).NewSession(testMeta())
	r := factoryResult()

	// Act
	_, err := s.Apply(extraction.ActorsExtracted{Actors: r.Actors})
	require.NoError(t, err)
	_, err = s.Apply(extraction.PhasesExtracted{Phases: r.Phases})
	require.NoError(t, err)
	_, err = s.Apply(extraction.Completed{})
	require.NoError(t, err)
	j, report, err := s.Finish()

	// Assert
	require.NoError(t, err)
	c := j.Content()
	assert.Len(t, c.Actors, 3)
	assert.Len(t, c.Phases, 2)
	assert.NotNil(t, c.Contexts)
	assert.Empty(t, c.Contexts)
	assert.NotNil(t, c.Nodes)
	assert.Empty(t, c.Nodes)
	assert.Empty(t, c.Edges)
	assert.Empty(t, c.Intersections)
	assert.True(t, report.Clean())
}

func TestSession_DefersNodesUntilLanesArrive(t *testing.T) {
	// Arrange
	s := newTestAssembler(KeepSuggested).NewSession(testMeta())
	r := factoryResult()

	// Act & Assert: nodes and edges arrive before contexts
	updates, err := s.Apply(extraction.ActorsExtracted{Actors: r.Actors})
	require.NoError(t, err)
	assert.Len(t, updates, 1)

	updates, err = s.Apply(extraction.NodesExtracted{Nodes: r.Nodes})
	require.NoError(t, err)
	assert.Empty(t, updates)

	updates, err = s.Apply(extraction.EdgesExtracted{Edges: r.Edges})
	require.NoError(t, err)
	assert.Empty(t, updates)

	updates, err = s.Apply(extraction.PhasesExtracted{Phases: r.Phases})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, extraction.CategoryPhases, updates[0].Category)
	require.NotNil(t, updates[0].Grid)
	assert.Len(t, updates[0].Grid.PhaseWidth, 2)

	updates, err = s.Apply(extraction.ContextsExtracted{Contexts: r.Contexts})
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, extraction.CategoryContexts, updates[0].Category)
	assert.Equal(t, extraction.CategoryNodes, updates[1].Category)
	assert.Equal(t, extraction.CategoryEdges, updates[2].Category)
	assert.Len(t, updates[1].Items, 4)

	_, err = s.Apply(extraction.Completed{})
	require.NoError(t, err)
	j, _, err := s.Finish()
	require.NoError(t, err)
	assertReferentialIntegrity(t, j.Content())
}

func TestSession_FlushDropsNodesWithoutLanes(t *testing.T) {
	// Arrange
	m := new(MockMetrics)
	m.On("RecordCategory", mock.Anything, mock.Anything).Return()
	m.On("RecordResolution", mock.Anything, mock.Anything).Return()
	m.On("RecordDropped", "nodes", ReasonUnresolved).Return()
	m.On("RecordDropped", "edges", ReasonNodeDropped).Return()
	asm := NewAssembler(nil, KeepSuggested, nil, m, zap.NewNop())
	s := asm.NewSession(testMeta())
	r := factoryResult()

	// Act: contexts never arrive
	_, err := s.Apply(extraction.ActorsExtracted{Actors: r.Actors})
	require.NoError(t, err)
	_, err = s.Apply(extraction.PhasesExtracted{Phases: r.Phases})
	require.NoError(t, err)
	_, err = s.Apply(extraction.NodesExtracted{Nodes: r.Nodes[:2]})
	require.NoError(t, err)
	_, err = s.Apply(extraction.EdgesExtracted{Edges: r.Edges[:1]})
	require.NoError(t, err)
	updates, err := s.Apply(extraction.Completed{})
	require.NoError(t, err)
	j, report, err := s.Finish()

	// Assert
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Empty(t, j.Content().Nodes)
	assert.Empty(t, j.Content().Edges)
	assert.Len(t, report.Dropped, 3)
	m.AssertCalled(t, "RecordDropped", "nodes", ReasonUnresolved)
	m.AssertCalled(t, "RecordDropped", "edges", ReasonNodeDropped)
	m.AssertCalled(t, "RecordResolution", "contexts", "none")
}

func TestSession_FallbackIsReported(t *testing.T) {
	m := new(MockMetrics)
	m.On("RecordCategory", mock.Anything, mock.Anything).Return()
	m.On("RecordResolution", mock.Anything, mock.Anything).Return()
	asm := NewAssembler(nil, KeepSuggested, nil, m, zap.NewNop())

	result := factoryResult()
	result.Nodes = []extraction.RawNode{{UserName: "Forklift", PhaseName: "Arrival", ContextName: "Dock"}}
	result.Edges = nil
	result.Intersections = nil

	j, report, err := asm.Assemble(testMeta(), result)

	require.NoError(t, err)
	assert.Equal(t, "actor-0", j.Content().Nodes[0].ActorID)
	assert.Equal(t, 1, report.Fallbacks())
	m.AssertCalled(t, "RecordResolution", "actors", "fallback")
	m.AssertCalled(t, "RecordResolution", "phases", "exact")
}

func TestSession_FailedIsTerminal(t *testing.T) {
	s := newTestAssembler(KeepSuggested).NewSession(testMeta())
	boom := errors.New("connection reset")

	_, err := s.Apply(extraction.Failed{Err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = s.Apply(extraction.ActorsExtracted{})
	assert.ErrorIs(t, err, ErrSessionClosed)

	j, _, err := s.Finish()
	assert.Nil(t, j)
	assert.ErrorIs(t, err, boom)
}

func TestSession_RepeatedCategoryIgnored(t *testing.T) {
	s := newTestAssembler(KeepSuggested).NewSession(testMeta())
	r := factoryResult()

	_, err := s.Apply(extraction.ActorsExtracted{Actors: r.Actors})
	require.NoError(t, err)
	updates, err := s.Apply(extraction.ActorsExtracted{Actors: r.Actors[:1]})

	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestAssemble_NodeLimit(t *testing.T) {
	asm := newTestAssembler(KeepSuggested)
	asm.domain.MaxNodesPerJourney = 2

	j, report, err := asm.Assemble(testMeta(), factoryResult())

	require.NoError(t, err)
	assert.Len(t, j.Content().Nodes, 2)
	assert.Contains(t, report.Dropped, Drop{Category: "nodes", Item: 2, Reason: ReasonNodeLimit})
	assert.Contains(t, report.Dropped, Drop{Category: "edges", Item: 1, Reason: ReasonNodeDropped})
}

func TestAssemble_LaneOrderingByField(t *testing.T) {
	// Arrange: phase-1 carries the lower order value
	result := factoryResult()
	result.Phases[0].Order, result.Phases[1].Order = 5, 1
	result.Edges, result.Intersections = nil, nil
	result.Nodes = []extraction.RawNode{
		{UserName: "Worker", PhaseName: "Arrival", ContextName: "Dock"},
		{UserName: "Worker", PhaseName: "Unloading", ContextName: "Dock"},
	}

	// Act
	j, _, err := newTestAssembler(KeepSuggested).Assemble(testMeta(), result)

	// Assert: ids stay arrival-indexed, canvas order follows the order field
	require.NoError(t, err)
	c := j.Content()
	assert.Equal(t, "phase-0", c.Phases[0].ID)
	assert.Greater(t, c.Nodes[0].Position.X, c.Nodes[1].Position.X)
}

func TestParseIntersectionPolicy(t *testing.T) {
	p, err := ParseIntersectionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, KeepSuggested, p)

	p, err = ParseIntersectionPolicy("derive")
	require.NoError(t, err)
	assert.Equal(t, Derive, p)

	_, err = ParseIntersectionPolicy("all")
	assert.Error(t, err)
}
