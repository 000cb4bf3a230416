package history

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Runs only against a real database, e.g.
// PLACEMENTPREP_TEST_POSTGRES_DSN=postgres://localhost:5432/placementprep_test?sslmode=disable
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("PLACEMENTPREP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PLACEMENTPREP_TEST_POSTGRES_DSN not set")
	}

	runRepositoryContract(t, func(t *testing.T) Repository {
		ctx := context.Background()
		repo, err := NewPostgresRepository(ctx, dsn, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Clear(ctx))
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}
