package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"placementprep/internal/errors"
	"placementprep/internal/types"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is fixed width so text ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores one row per entry with the canonical JSON as payload
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *errors.Logger
}

// NewSQLiteRepository opens (or creates) the database at path
func NewSQLiteRepository(ctx context.Context, path string, logger *errors.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "failed to create history directory", err).
			WithContext("path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "failed to open history database", err).
			WithContext("path", path)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageError(errors.ErrCodeStorageUnavailable, "failed to initialize history schema", err).
			WithContext("path", path)
	}

	return &SQLiteRepository{db: db, path: path, logger: logger}, nil
}

func initSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS history_entries (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		payload    TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_history_entries_created_at ON history_entries (created_at)`)
	return err
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM history_entries WHERE id = ?`, id).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return types.HistoryEntry{}, notFound(id)
	}
	if err != nil {
		return types.HistoryEntry{}, storageFailed("get", id, err)
	}
	return decodeStored([]byte(payload), id, r.logger, "path", r.path)
}

func (r *SQLiteRepository) Save(ctx context.Context, entry types.HistoryEntry) error {
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO history_entries (id, created_at, updated_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		entry.ID, sqliteTime(entry.CreatedAt), sqliteTime(entry.UpdatedAt), string(payload))
	if err != nil {
		return storageFailed("save", entry.ID, err)
	}
	return requireAffected(res, alreadyExists(entry.ID), "save", entry.ID)
}

func (r *SQLiteRepository) Update(ctx context.Context, entry types.HistoryEntry) error {
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE history_entries SET created_at = ?, updated_at = ?, payload = ? WHERE id = ?`,
		sqliteTime(entry.CreatedAt), sqliteTime(entry.UpdatedAt), string(payload), entry.ID)
	if err != nil {
		return storageFailed("update", entry.ID, err)
	}
	return requireAffected(res, notFound(entry.ID), "update", entry.ID)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]types.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM history_entries ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, storageFailed("list", "", err)
	}
	defer func() { _ = rows.Close() }()

	var raw []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, storageFailed("list", "", err)
		}
		raw = append(raw, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailed("list", "", err)
	}

	return decodeAll(raw, r.logger, "path", r.path), nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM history_entries WHERE id = ?`, id)
	if err != nil {
		return storageFailed("delete", id, err)
	}
	return requireAffected(res, notFound(id), "delete", id)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return storageFailed("clear", "", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func requireAffected(res sql.Result, none error, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageFailed(op, id, err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func storageFailed(op, id string, cause error) error {
	appErr := errors.NewStorageError(errors.ErrCodeStorageFailed, "history "+op+" failed", cause).
		WithContext("operation", op)
	if id != "" {
		appErr = appErr.WithContext("entry_id", id)
	}
	return appErr
}
