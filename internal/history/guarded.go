package history

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"placementprep/internal/config"
	"placementprep/internal/errors"
	"placementprep/internal/types"
)

// GuardedRepository wraps a Repository with a circuit breaker. Missing or
// duplicate entries and cancelled contexts do not count as failures.
type GuardedRepository struct {
	repo Repository
	cb   *gobreaker.CircuitBreaker[any]
}

// NewGuardedRepository wraps repo. A disabled breaker passes calls straight through.
func NewGuardedRepository(name string, repo Repository, cfg config.CircuitBreakerConfig, logger *errors.Logger) *GuardedRepository {
	g := &GuardedRepository{repo: repo}
	if !cfg.Enabled {
		return g
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("history-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				stderrors.Is(err, ErrNotFound) ||
				stderrors.Is(err, ErrAlreadyExists) ||
				stderrors.Is(err, context.Canceled)
		},
	}

	g.cb = gobreaker.NewCircuitBreaker[any](settings)
	return g
}

// Unwrap returns the guarded repository
func (g *GuardedRepository) Unwrap() Repository {
	return g.repo
}

func guard[T any](g *GuardedRepository, fn func() (T, error)) (T, error) {
	if g.cb == nil {
		return fn()
	}

	res, err := g.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "history store is temporarily unavailable", err).
				WithContext("breaker", g.cb.Name())
		}
		return zero, err
	}
	return res.(T), nil
}

func guardErr(g *GuardedRepository, fn func() error) error {
	_, err := guard(g, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (g *GuardedRepository) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	return guard(g, func() (types.HistoryEntry, error) { return g.repo.Get(ctx, id) })
}

func (g *GuardedRepository) Save(ctx context.Context, entry types.HistoryEntry) error {
	return guardErr(g, func() error { return g.repo.Save(ctx, entry) })
}

func (g *GuardedRepository) Update(ctx context.Context, entry types.HistoryEntry) error {
	return guardErr(g, func() error { return g.repo.Update(ctx, entry) })
}

func (g *GuardedRepository) List(ctx context.Context) ([]types.HistoryEntry, error) {
	return guard(g, func() ([]types.HistoryEntry, error) { return g.repo.List(ctx) })
}

func (g *GuardedRepository) Delete(ctx context.Context, id string) error {
	return guardErr(g, func() error { return g.repo.Delete(ctx, id) })
}

func (g *GuardedRepository) Clear(ctx context.Context) error {
	return guardErr(g, func() error { return g.repo.Clear(ctx) })
}

func (g *GuardedRepository) Close() error {
	return g.repo.Close()
}

// Stats returns circuit breaker statistics
func (g *GuardedRepository) Stats() map[string]any {
	if g == nil || g.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    g.cb.Name(),
		"state":   g.cb.State().String(),
		"counts":  g.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true unless the breaker is open or half-open
func (g *GuardedRepository) IsHealthy() bool {
	if g == nil || g.cb == nil {
		return true
	}
	return g.cb.State() == gobreaker.StateClosed
}
