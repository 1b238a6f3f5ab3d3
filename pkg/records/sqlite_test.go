package records

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "hunt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenSQLite_RejectsEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite path cannot be empty")
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt.db")
	ctx := context.Background()

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Upsert(ctx, &Record{DeviceID: "dev", CompletedSlugs: []string{"A"}, UpdatedAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	rec, err := second.Get(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, rec.CompletedSlugs)
	assert.Equal(t, path, second.Path())
}

func TestSQLiteStore_GetMissingIsNotFound(t *testing.T) {
	store := openTestSQLite(t)

	rec, err := store.Get(context.Background(), "nobody")
	assert.Nil(t, rec)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteStore_UpsertNeverDuplicates(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	at := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, &Record{DeviceID: "dev", CompletedSlugs: []string{"B"}, UpdatedAt: at}))
	require.NoError(t, store.Upsert(ctx, &Record{DeviceID: "dev", CompletedSlugs: []string{"B", "C"}, UpdatedAt: at.Add(time.Minute)}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := store.Get(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", rec.DeviceID)
	assert.Equal(t, []string{"B", "C"}, rec.CompletedSlugs)
	assert.True(t, rec.UpdatedAt.Equal(at.Add(time.Minute)))
}

func TestSQLiteStore_UpsertRejectsInvalidRecord(t *testing.T) {
	store := openTestSQLite(t)

	err := store.Upsert(context.Background(), &Record{DeviceID: "dev", CompletedSlugs: []string{"A", "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid record")
}

func TestSQLiteStore_ClosedDatabaseFails(t *testing.T) {
	store := openTestSQLite(t)
	require.NoError(t, store.Close())

	_, err := store.Get(context.Background(), "dev")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Error(t, store.Ping(context.Background()))
}
