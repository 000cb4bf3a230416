package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementprep/internal/errors"
	"placementprep/internal/types"
)

func TestFileRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		repo, err := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), errors.NewDiscardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestFileRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	entry := newEntry(t, "persisted", baseTime)
	require.NoError(t, repo.Save(ctx, entry))
	require.NoError(t, repo.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "persisted")
	require.NoError(t, err)
	assertSameEntry(t, entry, got)
}

func TestFileRepositoryLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(filepath.Join(dir, "history.json"), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newEntry(t, "a", baseTime)))
	require.NoError(t, repo.Save(ctx, newEntry(t, "b", baseTime.Add(time.Minute))))
	require.NoError(t, repo.Delete(ctx, "a"))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "history.json", files[0].Name())
}

func TestFileRepositorySkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	good := newEntry(t, "good", baseTime)
	goodJSON, err := json.Marshal(good)
	require.NoError(t, err)

	content := `[
		` + string(goodJSON) + `,
		{"company": "no id"},
		{"id": "bad-date", "createdAt": "yesterday"},
		"not an object",
		{"id": "legacy", "createdAt": "2024-05-29T10:00:00.000Z", "readinessScore": 50}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "legacy"}, ids(entries))
	assert.Equal(t, 50, entries[1].BaseScore)

	// Loading never rewrites the file
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(after))
}

func TestFileRepositoryRejectsUnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	content := `{"this is": "not an array"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := NewFileRepository(path, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(after))
}

func TestFileRepositoryEmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileRepositoryReloadKeepsEntriesOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), newEntry(t, "kept", baseTime)))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	assert.Error(t, repo.Reload())

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, ids(entries))
}

func TestFileRepositoryWatchReloadsExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "history.json")
	repo, err := NewFileRepository(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Watch(ctx, 20*time.Millisecond))
	assert.Error(t, repo.Watch(ctx, 20*time.Millisecond), "second watch must fail")

	require.NoError(t, repo.Save(ctx, newEntry(t, "local", baseTime)))

	external := []types.HistoryEntry{
		newEntry(t, "external", baseTime.Add(time.Hour)),
		newEntry(t, "local", baseTime),
	}
	data, err := json.Marshal(external)
	require.NoError(t, err)

	// Give the file a distinct modification time from our own write
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	assert.Eventually(t, func() bool {
		entries, err := repo.List(ctx)
		return err == nil && len(entries) == 2 && entries[0].ID == "external"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileRepositoryWatchStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "history.json"), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Watch(ctx, 0))
	require.True(t, repo.watcher.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !repo.watcher.IsRunning() }, time.Second, 10*time.Millisecond)
	assert.NoError(t, repo.Close())
}
