package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"journeymap/application/commands"
	"journeymap/application/queries"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/valueobjects"
	"journeymap/domain/layout"
	"journeymap/infrastructure/config"
	"journeymap/infrastructure/di"
	"journeymap/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pebbleConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	replayFile := filepath.Join(dir, "answer.json")
	require.NoError(t, os.WriteFile(replayFile, []byte(fixtures.WarehouseAnswer), 0o600))

	return &config.Config{
		Environment:        "test",
		AWSRegion:          "us-west-2",
		StorageBackend:     "pebble",
		PebblePath:         filepath.Join(dir, "journeys"),
		ReplayFile:         replayFile,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Second,
		IntersectionPolicy: "derive",
		Layout:             layout.DefaultSettings(),
		HistoryLimit:       10,
		QueryCacheTTL:      30,
		GenerateRate:       1,
		GenerateBurst:      1,
		LogLevel:           "error",
		AuthDisabled:       true,
		MetricsBackend:     "none",
	}
}

// TestJourneySurvivesRestart generates and edits a journey, closes the store
// and reads it back through a fresh container
func TestJourneySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := pebbleConfig(t, t.TempDir())
	id := valueobjects.NewJourneyID().String()

	// Arrange
	first, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, first.CommandBus.Send(ctx, commands.CreateJourneyCommand{
		JourneyID: id,
		UserID:    "user-1",
		Scenario:  "A picker hands totes to an AGV which drops them at shipping.",
		Title:     "Warehouse",
	}))
	created, err := first.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	require.NoError(t, err)
	node := created.(aggregates.Snapshot).Nodes[0]

	action := "scan tote"
	require.NoError(t, first.CommandBus.Send(ctx, commands.UpdateNodeCommand{
		UserID:    "user-1",
		JourneyID: id,
		NodeID:    node.ID,
		Action:    &action,
	}))
	cleanup()

	// Act
	second, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	result, err := second.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	require.NoError(t, err)
	listed, err := second.QueryBus.Ask(ctx, queries.ListJourneysQuery{UserID: "user-1", Limit: 10})
	require.NoError(t, err)

	// Assert
	snapshot := result.(aggregates.Snapshot)
	assert.Equal(t, "Warehouse", snapshot.Title)
	assert.Equal(t, "scan tote", snapshot.Nodes[0].Action)
	assert.Len(t, snapshot.Nodes, 3)
	assert.Len(t, snapshot.Edges, 2)
	assert.Equal(t, created.(aggregates.Snapshot).Version+1, snapshot.Version)
	assert.Equal(t, 1, listed.(queries.ListJourneysResult).TotalCount)

	// Undo history is per process and does not survive a restart
	err = second.CommandBus.Send(ctx, commands.UndoJourneyCommand{UserID: "user-1", JourneyID: id})
	assert.Error(t, err)
}

func TestDeletedJourneyIsGoneAfterRestart(t *testing.T) {
	ctx := context.Background()
	cfg := pebbleConfig(t, t.TempDir())
	id := valueobjects.NewJourneyID().String()

	first, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.CommandBus.Send(ctx, commands.CreateJourneyCommand{
		JourneyID: id, UserID: "user-1", Scenario: "warehouse",
	}))
	require.NoError(t, first.CommandBus.Send(ctx, commands.DeleteJourneyCommand{UserID: "user-1", JourneyID: id}))
	cleanup()

	second, cleanup, err := di.InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	_, err = second.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	assert.Error(t, err)
}
