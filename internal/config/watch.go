package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"terrainforge/pkg/logging"
)

// Watcher reloads Config whenever the backing YAML file changes. Every
// write or create event triggers a reload; events are not debounced.
type Watcher struct {
	watcher *fsnotify.Watcher
	prefix  string
	path    string

	mu  sync.RWMutex
	cfg Config

	done chan struct{}
}

// NewWatcher loads the initial Config and starts watching path for changes.
// If path is empty, no filesystem watch is installed and Current always
// returns the env-derived Config.
func NewWatcher(servicePrefix, path string) (*Watcher, error) {
	cfg, err := Load(servicePrefix, path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{prefix: servicePrefix, path: path, cfg: cfg, done: make(chan struct{})}
	if path == "" {
		return w, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, err
	}
	w.watcher = fw

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("config", err, "watcher error on %s", w.path)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.prefix, w.path)
	if err != nil {
		logging.Error("config", err, "reload of %s failed, keeping previous config", w.path)
		return
	}
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
	logging.Info("config", "reloaded configuration from %s", w.path)
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Stop releases the underlying filesystem watch, if any.
func (w *Watcher) Stop() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}
