package history

import (
	"context"

	"placementprep/internal/config"
	"placementprep/internal/errors"
)

type openOptions struct {
	observer Observer
}

// OpenOption customizes Open
type OpenOption func(*openOptions)

// WithObserver reports every repository call to o
func WithObserver(o Observer) OpenOption {
	return func(opts *openOptions) {
		opts.observer = o
	}
}

// Open builds the repository selected by cfg.Driver, wrapped in a circuit
// breaker. When cfg.Watch is set the file store reloads on external writes
// until ctx is done or the repository is closed.
func Open(ctx context.Context, cfg config.HistoryConfig, logger *errors.Logger, opts ...OpenOption) (*GuardedRepository, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		repo Repository
		err  error
	)
	switch cfg.Driver {
	case config.HistoryDriverMemory:
		repo = NewMemoryRepository()
	case "", config.HistoryDriverFile:
		var fileRepo *FileRepository
		fileRepo, err = NewFileRepository(cfg.Path, logger)
		if err == nil && cfg.Watch {
			if watchErr := fileRepo.Watch(ctx, cfg.WatchDebounce); watchErr != nil {
				logger.LogError(watchErr, "History file watch disabled", "path", cfg.Path)
			}
		}
		repo = fileRepo
	case config.HistoryDriverSQLite:
		repo, err = NewSQLiteRepository(ctx, cfg.Path, logger)
	case config.HistoryDriverPostgres:
		repo, err = NewPostgresRepository(ctx, cfg.DSN, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "unknown history driver", nil).
			WithContext("driver", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.HistoryDriverFile
	}
	logger.Info("History store opened", "driver", driver, "watch", cfg.Watch)

	return NewGuardedRepository(driver, instrument(repo, driver, o.observer), cfg.CircuitBreaker, logger), nil
}
