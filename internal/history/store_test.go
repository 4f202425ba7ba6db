package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Directory:  "app-" + string(rune('a'+i)),
			Command:    "mkstack create app",
			ConfigJSON: `{"backend":"hono"}`,
		}
		require.NoError(t, store.Record(ctx, run))
	}

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, "app-c", runs[0].Directory)
	assert.Equal(t, "app-a", runs[2].Directory)
	assert.Equal(t, base.Add(2*time.Minute), runs[0].CreatedAt.UTC())
	assert.Equal(t, `{"backend":"hono"}`, runs[0].ConfigJSON)
}

func TestStore_RecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, Run{Directory: "app", Command: "mkstack create app"}))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// n <= 0 falls back to the default page size.
	runs, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestStore_RecordFillsTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, Run{Directory: "app", Command: "mkstack create app"}))

	runs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.WithinDuration(t, time.Now(), runs[0].CreatedAt, time.Minute)
}

func TestStore_EmptyHistory(t *testing.T) {
	store := openTestStore(t)

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Run{Directory: "app", Command: "c"}))
	require.NoError(t, store.Close())

	// Schema application is idempotent; existing rows survive.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
