// Package history persists analysis results and the confidence state users
// attach to them. Every backend hands entries back newest first and passes
// loaded records through Migrate and ValidateEntry before use.
package history

import (
	"context"
	"slices"

	"placementprep/internal/errors"
	"placementprep/internal/types"
)

// Sentinel errors shared by every backend. Compare with errors.Is.
var (
	ErrNotFound      = errors.NewStorageError(errors.ErrCodeEntryNotFound, "history entry not found", nil)
	ErrAlreadyExists = errors.NewStorageError(errors.ErrCodeEntryExists, "history entry already exists", nil)
)

// Repository stores history entries
type Repository interface {
	// Get returns ErrNotFound when the id is unknown
	Get(ctx context.Context, id string) (types.HistoryEntry, error)
	// Save adds a new entry; ErrAlreadyExists when the id is taken
	Save(ctx context.Context, entry types.HistoryEntry) error
	// Update replaces the whole entry with the same id; ErrNotFound when absent
	Update(ctx context.Context, entry types.HistoryEntry) error
	// List returns every entry, newest first
	List(ctx context.Context) ([]types.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

// entrySet is the in-memory collection behind the memory and file backends.
// Callers hold their own lock.
type entrySet struct {
	entries []types.HistoryEntry
}

func (s *entrySet) index(id string) int {
	return slices.IndexFunc(s.entries, func(e types.HistoryEntry) bool { return e.ID == id })
}

func (s *entrySet) get(id string) (types.HistoryEntry, error) {
	i := s.index(id)
	if i < 0 {
		return types.HistoryEntry{}, notFound(id)
	}
	return cloneEntry(s.entries[i]), nil
}

func (s *entrySet) add(entry types.HistoryEntry) error {
	if s.index(entry.ID) >= 0 {
		return alreadyExists(entry.ID)
	}
	s.entries = slices.Insert(s.entries, 0, cloneEntry(entry))
	sortNewestFirst(s.entries)
	return nil
}

func (s *entrySet) replace(entry types.HistoryEntry) error {
	i := s.index(entry.ID)
	if i < 0 {
		return notFound(entry.ID)
	}
	s.entries[i] = cloneEntry(entry)
	sortNewestFirst(s.entries)
	return nil
}

func (s *entrySet) remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return notFound(id)
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return nil
}

func (s *entrySet) list() []types.HistoryEntry {
	out := make([]types.HistoryEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func (s *entrySet) reset(entries []types.HistoryEntry) {
	s.entries = slices.Clone(entries)
	sortNewestFirst(s.entries)
}

// sortNewestFirst orders by createdAt descending. Ties keep their current
// order, so the most recently saved of two same-instant entries stays first.
func sortNewestFirst(entries []types.HistoryEntry) {
	slices.SortStableFunc(entries, func(a, b types.HistoryEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// cloneEntry copies the confidence map so stored entries never alias caller state
func cloneEntry(e types.HistoryEntry) types.HistoryEntry {
	e.SkillConfidenceMap = e.SkillConfidenceMap.Clone()
	return e
}

func notFound(id string) error {
	return &wrappedError{sentinel: ErrNotFound, id: id}
}

func alreadyExists(id string) error {
	return &wrappedError{sentinel: ErrAlreadyExists, id: id}
}

// wrappedError attaches the entry id to a sentinel without mutating it
type wrappedError struct {
	sentinel *errors.AppError
	id       string
}

func (e *wrappedError) Error() string {
	return e.sentinel.Error() + ": " + e.id
}

func (e *wrappedError) Unwrap() error {
	return e.sentinel
}
