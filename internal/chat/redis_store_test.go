package chat

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	_, err = client.Ping(context.Background()).Result()
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreRecentReturnsAppendOrder(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ids := appendSystemMessages(t, store, 10)

	recent := store.Recent(HistoryLimit)
	require.Len(t, recent, 10)
	for i, msg := range recent {
		assert.Equal(t, ids[i], msg.ID)
	}
}

func TestRedisStoreRecentHonorsLimit(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ids := appendSystemMessages(t, store, 10)

	recent := store.Recent(4)
	require.Len(t, recent, 4)
	assert.Equal(t, ids[6], recent[0].ID)
	assert.Equal(t, ids[9], recent[3].ID)

	assert.Empty(t, store.Recent(0))
}

func TestRedisStoreEvictsOldestBeyondCap(t *testing.T) {
	store, _ := newTestRedisStore(t)
	store.cap = 5

	ids := appendSystemMessages(t, store, 6)

	recent := store.Recent(10)
	require.Len(t, recent, 5)
	assert.Equal(t, ids[1], recent[0].ID)
	assert.Equal(t, ids[5], recent[4].ID)
}

func TestRedisStoreSkipsUndecodableEntries(t *testing.T) {
	store, mr := newTestRedisStore(t)
	appendSystemMessages(t, store, 2)

	_, err := mr.Push(store.key, "not json")
	require.NoError(t, err)

	recent := store.Recent(HistoryLimit)
	assert.Len(t, recent, 2)
}
