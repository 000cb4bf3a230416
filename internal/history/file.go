package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"placementprep/internal/errors"
	"placementprep/internal/types"
)

// FileRepository keeps every entry in one JSON array on disk. Writes go to a
// temporary file in the same directory which is then renamed over the target.
type FileRepository struct {
	mu      sync.RWMutex
	set     entrySet
	path    string
	logger  *errors.Logger
	watcher *fileWatcher
}

// NewFileRepository opens the store at path, creating parent directories as
// needed. A missing file is an empty store. Entries that fail validation are
// skipped and logged; a file that is not a JSON array is reported as an error
// and left untouched.
func NewFileRepository(path string, logger *errors.Logger) (*FileRepository, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "failed to create history directory", err).
			WithContext("path", path)
	}

	r := &FileRepository{path: path, logger: logger}
	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	r.set.reset(entries)
	return r, nil
}

// Path returns the backing file
func (r *FileRepository) Path() string {
	return r.path
}

func (r *FileRepository) load() ([]types.HistoryEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read history file", err).
			WithContext("path", r.path)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeInvalidFormat, "history file is not a JSON array", err).
			WithContext("path", r.path)
	}

	return decodeAll(raw, r.logger, "path", r.path), nil
}

// decodeAll decodes each record, logging and skipping those that fail
func decodeAll(raw []json.RawMessage, logger *errors.Logger, source ...any) []types.HistoryEntry {
	entries := make([]types.HistoryEntry, 0, len(raw))
	skipped := 0
	for i, record := range raw {
		entry, err := DecodeEntry(record)
		if err != nil {
			skipped++
			logger.LogError(err, "Skipping invalid history entry", append([]any{"index", i}, source...)...)
			continue
		}
		entries = append(entries, entry)
	}
	if skipped > 0 {
		logger.Warn("Some history entries were skipped", append([]any{"skipped", skipped, "loaded", len(entries)}, source...)...)
	}
	return entries
}

// decodeStored decodes one stored row. A row that no longer decodes is
// logged and reported as missing, matching how List skips it.
func decodeStored(payload []byte, id string, logger *errors.Logger, source ...any) (types.HistoryEntry, error) {
	entry, err := DecodeEntry(payload)
	if err != nil {
		logger.LogError(err, "Stored history entry is unreadable", append([]any{"entry_id", id}, source...)...)
		return types.HistoryEntry{}, notFound(id)
	}
	return entry, nil
}

// persist writes the current set atomically. Callers hold the write lock.
func (r *FileRepository) persist() error {
	data, err := json.MarshalIndent(r.set.entries, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeStorageFailed, "failed to encode history", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to create temporary history file", err).
			WithContext("path", r.path)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if removeErr := os.Remove(tmpName); removeErr != nil && !os.IsNotExist(removeErr) {
			r.logger.LogError(removeErr, "Failed to remove temporary history file", "path", tmpName)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to write history file", err).
			WithContext("path", r.path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to sync history file", err).
			WithContext("path", r.path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to close history file", err).
			WithContext("path", r.path)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to set history file permissions", err).
			WithContext("path", r.path)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return errors.NewIOError(errors.ErrCodeStorageFailed, "failed to replace history file", err).
			WithContext("path", r.path)
	}

	if r.watcher != nil {
		if stat, err := os.Stat(r.path); err == nil {
			r.watcher.markSeen(stat.ModTime())
		}
	}
	return nil
}

// mutate applies fn to the set and persists the result, restoring the
// previous state if the write fails
func (r *FileRepository) mutate(fn func(*entrySet) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.set.entries
	r.set.entries = append([]types.HistoryEntry(nil), previous...)
	if err := fn(&r.set); err != nil {
		r.set.entries = previous
		return err
	}
	if err := r.persist(); err != nil {
		r.set.entries = previous
		return err
	}
	return nil
}

func (r *FileRepository) Get(_ context.Context, id string) (types.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.get(id)
}

func (r *FileRepository) Save(_ context.Context, entry types.HistoryEntry) error {
	return r.mutate(func(s *entrySet) error { return s.add(entry) })
}

func (r *FileRepository) Update(_ context.Context, entry types.HistoryEntry) error {
	return r.mutate(func(s *entrySet) error { return s.replace(entry) })
}

func (r *FileRepository) List(_ context.Context) ([]types.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.list(), nil
}

func (r *FileRepository) Delete(_ context.Context, id string) error {
	return r.mutate(func(s *entrySet) error { return s.remove(id) })
}

func (r *FileRepository) Clear(_ context.Context) error {
	return r.mutate(func(s *entrySet) error {
		s.reset(nil)
		return nil
	})
}

// Reload re-reads the backing file. On failure the in-memory entries are kept.
func (r *FileRepository) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		r.logger.LogError(err, "Failed to reload history file, keeping current entries")
		return err
	}
	r.set.reset(entries)
	r.logger.Info("History reloaded", "path", r.path, "entries", len(entries))
	return nil
}

// Watch reloads the store whenever the backing file changes on disk. It
// returns once the watcher runs; watching stops when ctx is done or the
// repository is closed.
func (r *FileRepository) Watch(ctx context.Context, debounce time.Duration) error {
	r.mu.Lock()
	if r.watcher != nil {
		r.mu.Unlock()
		return fmt.Errorf("history file %s is already watched", r.path)
	}
	w := newFileWatcher(r.path, debounce, func() { _ = r.Reload() }, r.logger)
	r.watcher = w
	r.mu.Unlock()

	if err := w.Start(); err != nil {
		r.mu.Lock()
		r.watcher = nil
		r.mu.Unlock()
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = w.Stop()
		case <-w.stopChan:
		}
	}()
	return nil
}

// Close stops the watcher if one is running
func (r *FileRepository) Close() error {
	r.mu.RLock()
	w := r.watcher
	r.mu.RUnlock()
	if w == nil {
		return nil
	}
	return w.Stop()
}
