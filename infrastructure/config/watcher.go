package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"journeymap/domain/layout"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// SettingsWatcher keeps the layout settings of a YAML config file current.
// It implements assembler.SettingsSource, so every new assembly session
// picks up the latest valid file contents.
type SettingsWatcher struct {
	path      string
	overrides LayoutOverrides
	watcher   *fsnotify.Watcher
	current   layout.Settings
	mu        sync.RWMutex
	onChange  []func(layout.Settings)
	logger    *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	debounce  time.Duration
}

// NewSettingsWatcher loads path and prepares to watch it. The overrides are
// applied to every version of the file.
func NewSettingsWatcher(path string, overrides LayoutOverrides, logger *zap.Logger) (*SettingsWatcher, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	settings := overrides.Apply(fc.Layout)
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout settings: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so atomic saves (write to temp, rename) are seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &SettingsWatcher{
		path:      path,
		overrides: overrides,
		watcher:   watcher,
		current:   settings,
		logger:   logger,
		stopCh:   make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Current returns the latest valid layout settings
func (w *SettingsWatcher) Current() layout.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback for reloaded settings. Register before Start.
func (w *SettingsWatcher) OnChange(fn func(layout.Settings)) {
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for changes
func (w *SettingsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Layout settings watcher started", zap.String("path", w.path))
}

// Stop stops watching. It is safe to call more than once.
func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Layout settings watcher stopped")
	})
}

func (w *SettingsWatcher) watchLoop() {
	var timer *time.Timer

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// reload swaps in the file's settings. Invalid files keep the current ones.
func (w *SettingsWatcher) reload() {
	fc, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload layout settings", zap.Error(err))
		return
	}
	settings := w.overrides.Apply(fc.Layout)
	if err := settings.Validate(); err != nil {
		w.logger.Error("Invalid layout settings, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = settings
	w.mu.Unlock()

	for _, fn := range w.onChange {
		fn(settings)
	}
	w.logger.Info("Layout settings reloaded",
		zap.String("path", w.path),
		zap.String("laneOrdering", string(settings.LaneOrdering)),
	)
}
