package jobstore

import (
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"terrainforge/pkg/logging"
)

// StatusWatcher watches the job store's directory for externally-written
// "<id>.status" files (compatibility path, see Store.loadStatusFile) and
// reloads that job's cached record as soon as one appears or changes,
// unless a "<id>.job" file exists for the same id. Grounded on the debounce-timer pattern in the
// teacher's internal/teleport/watcher.go CertWatcher.
type StatusWatcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
}

// NewStatusWatcher starts watching store's directory. Call Stop to release
// the underlying inotify/kqueue handle.
func NewStatusWatcher(store *Store) (*StatusWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(store.dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	sw := &StatusWatcher{
		store:    store,
		watcher:  fsw,
		debounce: 200 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (w *StatusWatcher) run() {
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".status") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			id := idFromStatusPath(event.Name)
			if id == "" {
				continue
			}
			if t, exists := pending[id]; exists {
				t.Stop()
			}
			pending[id] = time.AfterFunc(w.debounce, func() {
				w.refresh(id)
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn(subsystem, "status watcher error: %v", err)
		}
	}
}

func (w *StatusWatcher) refresh(id string) {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, err := os.Stat(w.store.jobPath(id)); err == nil {
		// A ".job" record exists and takes precedence; nothing to do.
		return
	}

	job, err := w.store.loadStatusFile(id)
	if err != nil {
		logging.Warn(subsystem, "status watcher: failed to load %q: %v", id, err)
		return
	}
	w.store.cache[id] = job
}

// Stop releases the underlying filesystem watch.
func (w *StatusWatcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
}

func idFromStatusPath(path string) string {
	base := path
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		base = path[i+1:]
	}
	return strings.TrimSuffix(base, ".status")
}
