package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integrationDB connects to the local test database, applying migrations
// so the schema is present. Skips when Postgres is not available.
func integrationDB(t *testing.T) *PostgresDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := testPostgresConfig()
	db, err := NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
		return nil
	}
	t.Cleanup(db.Close)

	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
	if err := RunMigrations(databaseURL, "../../migrations/postgres"); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return db
}

// checkpointSource registers a unique source name and removes its row
// when the test finishes
func checkpointSource(t *testing.T, db *PostgresDB) string {
	t.Helper()
	source := "test-" + t.Name()
	t.Cleanup(func() {
		ctx := testContext(t)
		_, _ = db.Pool().Exec(ctx, `DELETE FROM import_checkpoints WHERE source = $1`, source)
	})
	return source
}

func TestCheckpointAcquire_ClaimsAbsentRow(t *testing.T) {
	db := integrationDB(t)
	repo := NewCheckpointRepository(db)
	source := checkpointSource(t, db)
	ctx := testContext(t)

	cp, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)

	assert.True(t, acquired)
	require.NotNil(t, cp)
	assert.True(t, cp.IsInProgress)
	assert.Nil(t, cp.LastCursor)
}

func TestCheckpointAcquire_LosesWhileHeld(t *testing.T) {
	db := integrationDB(t)
	repo := NewCheckpointRepository(db)
	source := checkpointSource(t, db)
	ctx := testContext(t)

	_, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)
	require.True(t, acquired)

	cp, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)

	assert.False(t, acquired)
	require.NotNil(t, cp)
	assert.True(t, cp.IsInProgress)
}

func TestCheckpointAcquire_WinsOnIdleRow(t *testing.T) {
	db := integrationDB(t)
	repo := NewCheckpointRepository(db)
	source := checkpointSource(t, db)
	ctx := testContext(t)

	_, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, repo.SavePage(ctx, source, "page-2", "contact-9"))
	require.NoError(t, repo.Finalize(ctx, source))

	cp, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)

	assert.True(t, acquired)
	require.NotNil(t, cp)
	assert.True(t, cp.IsInProgress)

	// Re-acquiring keeps the interrupted run's resumption point
	require.NotNil(t, cp.LastCursor)
	assert.Equal(t, "page-2", *cp.LastCursor)
}

func TestCheckpointFinalize_LeavesCursorUntouched(t *testing.T) {
	db := integrationDB(t)
	repo := NewCheckpointRepository(db)
	source := checkpointSource(t, db)
	ctx := testContext(t)

	_, acquired, err := repo.Acquire(ctx, source)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, repo.SavePage(ctx, source, "page-3", "contact-17"))

	require.NoError(t, repo.Finalize(ctx, source))

	cp, err := repo.Get(ctx, source)
	require.NoError(t, err)
	require.NotNil(t, cp)

	assert.False(t, cp.IsInProgress)
	require.NotNil(t, cp.LastCursor)
	assert.Equal(t, "page-3", *cp.LastCursor)
	require.NotNil(t, cp.LastExternalContactID)
	assert.Equal(t, "contact-17", *cp.LastExternalContactID)
}

func TestCheckpointGet_MissingSource(t *testing.T) {
	db := integrationDB(t)
	repo := NewCheckpointRepository(db)
	ctx := testContext(t)

	cp, err := repo.Get(ctx, "test-never-created")
	require.NoError(t, err)
	assert.Nil(t, cp)
}
