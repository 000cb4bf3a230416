package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"placementprep/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T, path string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return newSQLiteRepo(t, filepath.Join(t.TempDir(), "history.db"))
	})
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "history.db")

	first, err := NewSQLiteRepository(ctx, path, nil)
	require.NoError(t, err)
	entry := newEntry(t, "kept", baseTime)
	require.NoError(t, first.Save(ctx, entry))
	require.NoError(t, first.Close())

	second := newSQLiteRepo(t, path)
	got, err := second.Get(ctx, "kept")
	require.NoError(t, err)
	assertSameEntry(t, entry, got)
}

func TestSQLiteRepositorySkipsCorruptRows(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "history.db"))

	require.NoError(t, repo.Save(ctx, newEntry(t, "good", baseTime)))
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO history_entries (id, created_at, updated_at, payload) VALUES (?, ?, ?, ?)`,
		"broken", sqliteTime(baseTime.Add(time.Hour)), sqliteTime(baseTime.Add(time.Hour)), `{"id": 42}`)
	require.NoError(t, err)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, ids(entries))

	_, err = repo.Get(ctx, "broken")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, errors.HasCode(err, errors.ErrCodeInvalidEntry))

	guarded := NewGuardedRepository("sqlite", repo, breakerConfig(), nil)
	for range 5 {
		_, err := guarded.Get(ctx, "broken")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.True(t, guarded.IsHealthy(), "unreadable rows do not count as store failures")
}

func TestSQLiteTimeOrdersLexically(t *testing.T) {
	earlier := sqliteTime(time.Date(2026, 1, 1, 0, 0, 0, 5, time.UTC))
	later := sqliteTime(time.Date(2026, 1, 1, 0, 0, 0, 40, time.UTC))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))
}
