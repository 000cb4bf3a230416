package history

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"placementprep/internal/errors"
	"placementprep/internal/types"
)

// PostgresRepository stores entries as JSONB rows in a pgx pool
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *errors.Logger
}

// NewPostgresRepository connects, pings and ensures the schema exists
func NewPostgresRepository(ctx context.Context, dsn string, logger *errors.Logger) (*PostgresRepository, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "failed to create history connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "failed to reach history database", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS history_entries (
		id         TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		payload    JSONB NOT NULL
	)`)
	if err == nil {
		_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_history_entries_created_at ON history_entries (created_at DESC)`)
	}
	if err != nil {
		pool.Close()
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "failed to initialize history schema", err)
	}

	return &PostgresRepository{pool: pool, logger: logger}, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM history_entries WHERE id = $1`, id).Scan(&payload)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return types.HistoryEntry{}, notFound(id)
	}
	if err != nil {
		return types.HistoryEntry{}, storageFailed("get", id, err)
	}
	return decodeStored(payload, id, r.logger, "driver", "postgres")
}

func (r *PostgresRepository) Save(ctx context.Context, entry types.HistoryEntry) error {
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO history_entries (id, created_at, updated_at, payload) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.CreatedAt, entry.UpdatedAt, payload)
	if err != nil {
		return storageFailed("save", entry.ID, err)
	}
	return requireRows(tag, alreadyExists(entry.ID))
}

func (r *PostgresRepository) Update(ctx context.Context, entry types.HistoryEntry) error {
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE history_entries SET created_at = $2, updated_at = $3, payload = $4 WHERE id = $1`,
		entry.ID, entry.CreatedAt, entry.UpdatedAt, payload)
	if err != nil {
		return storageFailed("update", entry.ID, err)
	}
	return requireRows(tag, notFound(entry.ID))
}

func (r *PostgresRepository) List(ctx context.Context) ([]types.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT payload FROM history_entries ORDER BY created_at DESC`)
	if err != nil {
		return nil, storageFailed("list", "", err)
	}
	defer rows.Close()

	var raw []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, storageFailed("list", "", err)
		}
		raw = append(raw, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailed("list", "", err)
	}

	return decodeAll(raw, r.logger, "driver", "postgres"), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM history_entries WHERE id = $1`, id)
	if err != nil {
		return storageFailed("delete", id, err)
	}
	return requireRows(tag, notFound(id))
}

func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM history_entries`); err != nil {
		return storageFailed("clear", "", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func requireRows(tag pgconn.CommandTag, none error) error {
	if tag.RowsAffected() == 0 {
		return none
	}
	return nil
}
