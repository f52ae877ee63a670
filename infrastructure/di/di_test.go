package di

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
	"journeymap/pkg/observability"
	"journeymap/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache(t *testing.T) {
	// Arrange
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewInMemoryCache(0)
	cache.now = func() time.Time { return now }

	// Act
	require.NoError(t, cache.Set(ctx, "a", 1, 10))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	// Assert
	v, ok := cache.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(30 * time.Second)
	_, ok = cache.Get(ctx, "a")
	assert.False(t, ok, "expired")

	cache.removeExpired()
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Delete(ctx, "b"))
	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "c", 3, 60))
	require.NoError(t, cache.Clear(ctx))
	assert.Zero(t, cache.Len())

	cache.Close()
	cache.Close()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	replayFile := filepath.Join(t.TempDir(), "answer.json")
	require.NoError(t, os.WriteFile(replayFile, []byte(fixtures.WarehouseAnswer), 0o600))

	return &config.Config{
		Environment:        "test",
		AWSRegion:          "us-west-2",
		StorageBackend:     "memory",
		ReplayFile:         replayFile,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Second,
		IntersectionPolicy: "keep-suggested",
		Layout:             layout.DefaultSettings(),
		HistoryLimit:       10,
		QueryCacheTTL:      30,
		GenerateRate:       1,
		GenerateBurst:      1,
		LogLevel:           "error",
		AuthDisabled:       true,
		MetricsBackend:     "prometheus",
		MetricsNamespace:   "journeymap_test",
	}
}

func TestInitializeContainer_GeneratesAndServesJourneys(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	id := valueobjects.NewJourneyID().String()

	// Act
	err = container.CommandBus.Send(ctx, commands.CreateJourneyCommand{
		JourneyID: id,
		UserID:    "user-1",
		Scenario:  "A picker hands totes to an AGV.",
		Title:     "Warehouse",
	})
	require.NoError(t, err)

	result, err := container.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	require.NoError(t, err)

	// Assert
	snapshot, ok := result.(aggregates.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "Warehouse", snapshot.Title)
	assert.Len(t, snapshot.Actors, 2)
	assert.Len(t, snapshot.Nodes, 3)
	assert.Len(t, snapshot.Edges, 2)

	assert.IsType(t, &observability.Collector{}, container.Metrics)
	assert.Nil(t, container.CloudWatch)
	assert.Nil(t, container.Settings)
	assert.Nil(t, container.JWTValidator)
	assert.Equal(t, 1, container.Cache.Len(), "journey lookup is cached")
}

func TestInitializeContainer_WatchedSettingsKeepEnvOverrides(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	cfg.ConfigFile = filepath.Join(t.TempDir(), "journeymap.yaml")
	require.NoError(t, os.WriteFile(cfg.ConfigFile, []byte("layout:\n  circular_radius: 40\n"), 0o644))
	cfg.LayoutOverrides = config.LayoutOverrides{LaneOrdering: layout.OrderByExtraction}
	cfg.Layout = cfg.LayoutOverrides.Apply(cfg.Layout)

	// Act
	container, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	// Assert
	require.NotNil(t, container.Settings)
	current := container.Settings.Current()
	assert.Equal(t, layout.OrderByExtraction, current.LaneOrdering)
	assert.Equal(t, 40.0, current.CircularRadius)
}

func TestInitializeContainer_EditInvalidatesCache(t *testing.T) {
	container, cleanup, err := InitializeContainer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	id := valueobjects.NewJourneyID().String()
	require.NoError(t, container.CommandBus.Send(ctx, commands.CreateJourneyCommand{
		JourneyID: id, UserID: "user-1", Scenario: "warehouse",
	}))
	_, err = container.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	require.NoError(t, err)

	title := "Renamed"
	require.NoError(t, container.CommandBus.Send(ctx, commands.UpdateJourneyCommand{
		UserID: "user-1", JourneyID: id, Title: &title,
	}))

	result, err := container.QueryBus.Ask(ctx, queries.GetJourneyQuery{UserID: "user-1", JourneyID: id})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", result.(aggregates.Snapshot).Title)
}

func TestInitializeContainer_RejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.IntersectionPolicy = "sometimes"

	_, _, err := InitializeContainer(context.Background(), cfg)

	assert.Error(t, err)
}

func TestProvideMetrics(t *testing.T) {
	collector := observability.NewCollector("journeymap_test")
	recorder := observability.NewCloudWatchRecorder("ns", nil, nil)

	tests := []struct {
		backend string
		want    interface{}
	}{
		{"prometheus", collector},
		{"cloudwatch", recorder},
		{"none", observability.Nop{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			got := ProvideMetrics(&config.Config{MetricsBackend: tt.backend}, collector, recorder)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvideJWTValidator(t *testing.T) {
	v, err := ProvideJWTValidator(&config.Config{AuthDisabled: true})
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ProvideJWTValidator(&config.Config{JWTSecret: "s", JWTIssuer: "journeymap"})
	require.NoError(t, err)
	assert.NotNil(t, v)
}
