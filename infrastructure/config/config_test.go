package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"journeymap/domain/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journeymap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "keep-suggested", cfg.IntersectionPolicy)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, layout.DefaultSettings(), cfg.Layout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	// Arrange
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "pebble")
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("LLM_TIMEOUT", "45")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LANE_ORDERING", "extraction")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pebble", cfg.StorageBackend)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, layout.OrderByExtraction, cfg.Layout.LaneOrdering)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, `
layout:
  circular_radius: 80
extraction:
  intersection_policy: derive
  max_buffer_bytes: 4096
history_limit: 7
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LANE_ORDERING", "extraction")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.Layout.CircularRadius)
	assert.Equal(t, layout.DefaultSettings().MinPhaseWidth, cfg.Layout.MinPhaseWidth)
	assert.Equal(t, layout.OrderByExtraction, cfg.Layout.LaneOrdering, "env wins over the file")
	assert.Equal(t, "derive", cfg.IntersectionPolicy)
	assert.Equal(t, 4096, cfg.MaxBufferBytes)
	assert.Equal(t, 7, cfg.HistoryLimit)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:        "development",
			StorageBackend:     "memory",
			MetricsBackend:     "none",
			IntersectionPolicy: "keep-suggested",
			Layout:             layout.DefaultSettings(),
			HistoryLimit:       50,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.StorageBackend = "redis" },
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "dynamodb without table",
			mutate:  func(c *Config) { c.StorageBackend = "dynamodb" },
			wantErr: "DYNAMODB_TABLE",
		},
		{
			name:    "unknown metrics",
			mutate:  func(c *Config) { c.MetricsBackend = "statsd" },
			wantErr: "METRICS_BACKEND",
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.IntersectionPolicy = "guess" },
			wantErr: "INTERSECTION_POLICY",
		},
		{
			name:    "bad layout",
			mutate:  func(c *Config) { c.Layout.NodeWidth = 0 },
			wantErr: "invalid layout settings",
		},
		{
			name:    "history limit",
			mutate:  func(c *Config) { c.HistoryLimit = 0 },
			wantErr: "HISTORY_LIMIT",
		},
		{
			name:    "production without secret",
			mutate:  func(c *Config) { c.Environment = "production"; c.OpenAIAPIKey = "sk" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "production without model key",
			mutate:  func(c *Config) { c.Environment = "production"; c.JWTSecret = "s" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name: "production replaying",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "s"
				c.ReplayFile = "answer.json"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsWatcher_Reload(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, "layout:\n  circular_radius: 40\n")
	w, err := NewSettingsWatcher(path, LayoutOverrides{}, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	changed := make(chan layout.Settings, 1)
	w.OnChange(func(s layout.Settings) { changed <- s })
	w.Start()
	defer w.Stop()
	assert.Equal(t, 40.0, w.Current().CircularRadius)

	// Act
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  circular_radius: 90\n"), 0o644))

	// Assert
	select {
	case s := <-changed:
		assert.Equal(t, 90.0, s.CircularRadius)
	case <-time.After(2 * time.Second):
		t.Fatal("settings were not reloaded")
	}
	assert.Equal(t, 90.0, w.Current().CircularRadius)
}

func TestSettingsWatcher_KeepsCurrentOnInvalidFile(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, "layout:\n  circular_radius: 40\n")
	w, err := NewSettingsWatcher(path, LayoutOverrides{}, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  node_width: -5\n"), 0o644))

	// Act
	w.reload()

	// Assert
	assert.Equal(t, 40.0, w.Current().CircularRadius)
}

func TestNewSettingsWatcher_RejectsInvalidFile(t *testing.T) {
	path := writeConfigFile(t, "layout:\n  lane_ordering: random\n")

	_, err := NewSettingsWatcher(path, LayoutOverrides{}, zap.NewNop())

	assert.Error(t, err)
}

func TestLoadConfig_EnvWinsOverFile(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, `
layout:
  lane_ordering: order-field
extraction:
  intersection_policy: derive
  max_buffer_bytes: 4096
history_limit: 7
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LANE_ORDERING", "extraction")
	t.Setenv("INTERSECTION_POLICY", "require-shared")
	t.Setenv("MAX_BUFFER_BYTES", "8192")
	t.Setenv("HISTORY_LIMIT", "12")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, layout.OrderByExtraction, cfg.Layout.LaneOrdering)
	assert.Equal(t, layout.OrderByExtraction, cfg.LayoutOverrides.LaneOrdering)
	assert.Equal(t, "require-shared", cfg.IntersectionPolicy)
	assert.Equal(t, 8192, cfg.MaxBufferBytes)
	assert.Equal(t, 12, cfg.HistoryLimit)
}

func TestSettingsWatcher_KeepsEnvOverrides(t *testing.T) {
	// Arrange
	path := writeConfigFile(t, "layout:\n  circular_radius: 40\n")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LANE_ORDERING", "extraction")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	w, err := NewSettingsWatcher(cfg.ConfigFile, cfg.LayoutOverrides, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	assert.Equal(t, layout.OrderByExtraction, w.Current().LaneOrdering)
	assert.Equal(t, cfg.Layout, w.Current())

	// Act
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  circular_radius: 90\n  lane_ordering: order-field\n"), 0o644))
	w.reload()

	// Assert
	assert.Equal(t, 90.0, w.Current().CircularRadius)
	assert.Equal(t, layout.OrderByExtraction, w.Current().LaneOrdering)
}
