package history

import (
	"context"
	"time"

	"placementprep/internal/types"
)

// Observer receives the outcome of each repository call
type Observer interface {
	RecordStorageOperation(ctx context.Context, driver, operation string, duration time.Duration, err error)
}

// instrumentedRepository reports every call to an Observer
type instrumentedRepository struct {
	repo     Repository
	driver   string
	observer Observer
}

func instrument(repo Repository, driver string, observer Observer) Repository {
	if observer == nil {
		return repo
	}
	return &instrumentedRepository{repo: repo, driver: driver, observer: observer}
}

func (r *instrumentedRepository) observe(ctx context.Context, op string, start time.Time, err error) {
	r.observer.RecordStorageOperation(ctx, r.driver, op, time.Since(start), err)
}

func (r *instrumentedRepository) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	start := time.Now()
	entry, err := r.repo.Get(ctx, id)
	r.observe(ctx, "get", start, err)
	return entry, err
}

func (r *instrumentedRepository) Save(ctx context.Context, entry types.HistoryEntry) error {
	start := time.Now()
	err := r.repo.Save(ctx, entry)
	r.observe(ctx, "save", start, err)
	return err
}

func (r *instrumentedRepository) Update(ctx context.Context, entry types.HistoryEntry) error {
	start := time.Now()
	err := r.repo.Update(ctx, entry)
	r.observe(ctx, "update", start, err)
	return err
}

func (r *instrumentedRepository) List(ctx context.Context) ([]types.HistoryEntry, error) {
	start := time.Now()
	entries, err := r.repo.List(ctx)
	r.observe(ctx, "list", start, err)
	return entries, err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.repo.Delete(ctx, id)
	r.observe(ctx, "delete", start, err)
	return err
}

func (r *instrumentedRepository) Clear(ctx context.Context) error {
	start := time.Now()
	err := r.repo.Clear(ctx)
	r.observe(ctx, "clear", start, err)
	return err
}

func (r *instrumentedRepository) Close() error {
	return r.repo.Close()
}
