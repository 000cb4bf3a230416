package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"placementprep/internal/errors"
)

const defaultWatchDebounce = 500 * time.Millisecond

// fileWatcher reports external changes to a single file. The parent directory
// is watched too so atomic replacements (write temp, rename) are seen.
type fileWatcher struct {
	mu sync.Mutex

	path        string
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

func newFileWatcher(path string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *fileWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultWatchDebounce
	}

	return &fileWatcher{
		path:          path,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching; it fails if the watcher already runs
func (w *fileWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("history file watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.fsWatcher = watcher

	if stat, err := os.Stat(w.path); err == nil {
		w.lastModTime = stat.ModTime()
	}

	w.running = true
	go w.watchLoop()

	w.logger.Info("History file watcher started",
		"file", w.path,
		"debounce_delay", w.debounceDelay)
	return nil
}

// Stop ends the watch loop; stopping a stopped watcher is a no-op
func (w *fileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	w.logger.Info("History file watcher stopped", "file", w.path)
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *fileWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// markSeen records a modification time produced by our own write so the
// event it raises does not trigger a reload
func (w *fileWatcher) markSeen(modTime time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if modTime.After(w.lastModTime) {
		w.lastModTime = modTime
	}
}

func (w *fileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "History file watcher error")

		case <-w.reloadChan:
			if w.hasFileChanged() {
				w.logger.Info("History file changed on disk, reloading", "file", w.path)
				w.onChange()
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) &&
		filepath.Base(event.Name) != filepath.Base(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// hasFileChanged compares the current modification time with the last one seen
func (w *fileWatcher) hasFileChanged() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	stat, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) && !w.lastModTime.IsZero() {
			w.lastModTime = time.Time{}
			return true
		}
		return false
	}

	if stat.ModTime().Equal(w.lastModTime) {
		return false
	}
	w.lastModTime = stat.ModTime()
	return true
}

func (w *fileWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
