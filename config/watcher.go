package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last file event before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads the layered configuration when a config file changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	startDir string
	debounce time.Duration
	logger   *logrus.Entry
	onReload func(*Config)

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the global config directory and the directory of the project
// config found from startDir. onReload receives every configuration that loads
// and validates; broken edits are logged and skipped.
func NewWatcher(startDir string, debounce time.Duration, logger *logrus.Entry, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watched := make(map[string]bool)
	add := func(dir string) {
		if dir == "" || watched[dir] {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		if err := fsw.Add(dir); err != nil {
			logger.WithError(err).Warnf("Failed to watch %s", dir)
			return
		}
		watched[dir] = true
		logger.Debugf("Watching config directory: %s", dir)
	}

	if globalPath := GlobalConfigPath(); globalPath != "" {
		add(filepath.Dir(globalPath))
	}
	if projectPath, err := FindConfigFile(startDir); err == nil {
		add(filepath.Dir(projectPath))
	} else {
		add(startDir)
	}

	return &Watcher{
		watcher:  fsw,
		startDir: startDir,
		debounce: debounce,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Start processes file events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 && isConfigFile(event.Name) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.stopTimer()
			w.watcher.Close()
			return
		}
	}
}

// schedule restarts the debounce timer so a burst of writes triggers one reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFrom(w.startDir)
	if err != nil {
		w.logger.WithError(err).Warn("Config changed but failed to load; keeping previous configuration")
		return
	}
	w.logger.Info("Configuration reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func isConfigFile(name string) bool {
	base := filepath.Base(name)
	if !strings.HasPrefix(strings.TrimPrefix(base, "."), "sheetsync") {
		return false
	}
	switch filepath.Ext(base) {
	case ".yml", ".yaml", ".toml":
		return true
	}
	return false
}
