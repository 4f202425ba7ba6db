package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstack/mkstack/internal/history"
)

func seedHistory(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Record(context.Background(), history.Run{
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			Directory:  "app-" + string(rune('a'+i)),
			Command:    "mkstack create app",
			ConfigJSON: "{}",
		}))
	}
	return path
}

func TestRecent_EmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	out, _, err := execute(t, nil, "recent", "--history-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded yet")
}

func TestRecent_ListsNewestFirst(t *testing.T) {
	path := seedHistory(t, 3)

	out, _, err := execute(t, nil, "recent", "--history-db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "app-c")
	assert.Contains(t, out, "mkstack create app")
	assert.Less(t, strings.Index(out, "app-c"), strings.Index(out, "app-a"))
}

func TestRecent_HonorsLimit(t *testing.T) {
	path := seedHistory(t, 5)

	out, _, err := execute(t, nil, "--format", "json", "recent", "--history-db", path, "-n", "2")
	require.NoError(t, err)

	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "app-e", runs[0].Directory)
	assert.Equal(t, "app-d", runs[1].Directory)
}
