package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementprep/internal/analyzer"
	"placementprep/internal/errors"
	"placementprep/internal/types"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newEntry(t *testing.T, id string, createdAt time.Time) types.HistoryEntry {
	t.Helper()
	a := analyzer.New(
		analyzer.WithClock(func() time.Time { return createdAt }),
		analyzer.WithIDGenerator(func() string { return id }),
	)
	return types.NewHistoryEntry(a.Analyze(
		"We need a React and Node.js developer with SQL experience",
		"Infosys",
		"Frontend Engineer",
	))
}

func assertSameEntry(t *testing.T, want, got types.HistoryEntry) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, want.Company, got.Company)
	assert.Equal(t, want.Role, got.Role)
	assert.Equal(t, want.Text, got.Text)
	assert.Equal(t, want.BaseScore, got.BaseScore)
	assert.Equal(t, want.FinalScore, got.FinalScore)
	assert.Equal(t, want.SkillConfidenceMap, got.SkillConfidenceMap)
	assert.True(t, want.ExtractedSkills.Equal(got.ExtractedSkills), "skills differ")
	assert.Equal(t, want.Rounds, got.Rounds)
	assert.Equal(t, want.Plan, got.Plan)
	assert.Equal(t, want.Questions, got.Questions)
	assert.Equal(t, want.CompanyIntel, got.CompanyIntel)
}

func ids(entries []types.HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// runRepositoryContract exercises the behavior every backend shares
func runRepositoryContract(t *testing.T, open func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		repo := open(t)
		entry := newEntry(t, "a", baseTime)

		require.NoError(t, repo.Save(ctx, entry))

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assertSameEntry(t, entry, got)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Save(ctx, newEntry(t, "middle", baseTime.Add(time.Hour))))
		require.NoError(t, repo.Save(ctx, newEntry(t, "oldest", baseTime)))
		require.NoError(t, repo.Save(ctx, newEntry(t, "newest", baseTime.Add(2*time.Hour))))

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"newest", "middle", "oldest"}, ids(entries))
	})

	t.Run("save rejects a duplicate id", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Save(ctx, newEntry(t, "dup", baseTime)))

		err := repo.Save(ctx, newEntry(t, "dup", baseTime.Add(time.Minute)))
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.True(t, errors.HasCode(err, errors.ErrCodeEntryExists))
	})

	t.Run("get unknown id", func(t *testing.T) {
		repo := open(t)
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, errors.HasCode(err, errors.ErrCodeEntryNotFound))
	})

	t.Run("update replaces the whole entry", func(t *testing.T) {
		repo := open(t)
		entry := newEntry(t, "u", baseTime)
		require.NoError(t, repo.Save(ctx, entry))

		updated := entry
		updated.SkillConfidenceMap = types.ToggleSkill(entry.SkillConfidenceMap, "React")
		updated.FinalScore = analyzer.AdjustedScore(updated.BaseScore, updated.SkillConfidenceMap)
		updated.UpdatedAt = baseTime.Add(time.Hour)
		require.NoError(t, repo.Update(ctx, updated))

		got, err := repo.Get(ctx, "u")
		require.NoError(t, err)
		assertSameEntry(t, updated, got)
		assert.Equal(t, entry.BaseScore+2, got.FinalScore)
	})

	t.Run("update unknown id", func(t *testing.T) {
		repo := open(t)
		assert.ErrorIs(t, repo.Update(ctx, newEntry(t, "ghost", baseTime)), ErrNotFound)

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("delete", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Save(ctx, newEntry(t, "keep", baseTime)))
		require.NoError(t, repo.Save(ctx, newEntry(t, "drop", baseTime.Add(time.Minute))))

		require.NoError(t, repo.Delete(ctx, "drop"))
		assert.ErrorIs(t, repo.Delete(ctx, "drop"), ErrNotFound)

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, ids(entries))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Save(ctx, newEntry(t, "one", baseTime)))
		require.NoError(t, repo.Save(ctx, newEntry(t, "two", baseTime.Add(time.Minute))))

		require.NoError(t, repo.Clear(ctx))

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("returned entries do not alias stored state", func(t *testing.T) {
		repo := open(t)
		require.NoError(t, repo.Save(ctx, newEntry(t, "x", baseTime)))

		got, err := repo.Get(ctx, "x")
		require.NoError(t, err)
		got.SkillConfidenceMap["Java"] = types.ConfidenceKnown

		again, err := repo.Get(ctx, "x")
		require.NoError(t, err)
		assert.NotContains(t, again.SkillConfidenceMap, "Java")
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewMemoryRepository()
	})
}

func TestListKeepsSaveOrderForSameInstant(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newEntry(t, "first", baseTime)))
	require.NoError(t, repo.Save(ctx, newEntry(t, "second", baseTime)))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, ids(entries))
}
