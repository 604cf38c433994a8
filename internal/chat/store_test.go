package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "messages.json"))
	require.NoError(t, err)
	return store
}

func appendSystemMessages(t *testing.T, store Store, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		msg := NewSystemMessage(fmt.Sprintf("narration %d", i))
		require.NoError(t, store.Append(msg))
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestFileStoreRecentReturnsAppendOrder(t *testing.T) {
	store := newTestFileStore(t)
	ids := appendSystemMessages(t, store, 10)

	recent := store.Recent(HistoryLimit)
	require.Len(t, recent, 10)
	for i, msg := range recent {
		assert.Equal(t, ids[i], msg.ID)
	}
}

func TestFileStoreRecentHonorsLimit(t *testing.T) {
	store := newTestFileStore(t)
	ids := appendSystemMessages(t, store, 10)

	recent := store.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[7], recent[0].ID)
	assert.Equal(t, ids[9], recent[2].ID)

	assert.Empty(t, store.Recent(0))
	assert.Len(t, store.Recent(100), 10)
}

func TestFileStoreEvictsOldestBeyondCap(t *testing.T) {
	store := newTestFileStore(t)
	store.cap = 5

	ids := appendSystemMessages(t, store, 6)

	recent := store.Recent(10)
	require.Len(t, recent, 5)
	assert.Equal(t, ids[1], recent[0].ID, "the oldest entry should have been evicted")
	assert.Equal(t, ids[5], recent[4].ID)
}

func TestFileStoreStaysAtCapBetweenAppends(t *testing.T) {
	store := newTestFileStore(t)
	store.cap = 3

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(NewSystemMessage("x")))
		assert.LessOrEqual(t, len(store.Recent(100)), 3)
	}
}

func TestFileStoreRecentDegradesOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	appendSystemMessages(t, store, 3)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Empty(t, store.Recent(HistoryLimit))
}

func TestFileStoreRecentDegradesOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	assert.Empty(t, store.Recent(HistoryLimit))
}

func TestFileStoreAppendErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	// Turn the log path into a directory so the write must fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	assert.Error(t, store.Append(NewSystemMessage("boom")))
}

func TestFileStoreAppendAfterCorruptionStartsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	appendSystemMessages(t, store, 3)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	msg := NewSystemMessage("fresh start")
	require.NoError(t, store.Append(msg))

	recent := store.Recent(HistoryLimit)
	require.Len(t, recent, 1)
	assert.Equal(t, msg.ID, recent[0].ID)
}
