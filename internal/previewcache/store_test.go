package previewcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/johnswift/eclipse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiDoc = `{
  "version": "1.0",
  "type": "eclipse-multi-space-export",
  "schemaVersion": 1,
  "data": {"spaces": [
    {"name": "Main", "iconType": "emoji", "apps": [{"type": "app", "title": "Mail", "url": "https://mail.example/?a=1&b=2"}]},
    {"name": "Work", "iconType": "emoji", "apps": []}
  ]}
}`

func testPending(t *testing.T) PendingImport {
	t.Helper()
	payload, err := transfer.Decode([]byte(multiDoc))
	require.NoError(t, err)
	return PendingImport{
		Payload:   payload,
		Selection: []int{1},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestRedisStorePutGet(t *testing.T) {
	store, _ := setupTestRedis(t, time.Minute)
	ctx := context.Background()
	want := testPending(t)

	token, err := store.Put(ctx, want)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, want.Selection, got.Selection)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.Payload.Spaces(), got.Payload.Spaces())
	assert.Equal(t, transfer.KindMulti, got.Payload.Kind)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, s := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	token, err := store.Put(ctx, testPending(t))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.TTL(store.key(token)))

	s.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	token, err := store.Put(ctx, testPending(t))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUnknownToken(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url", time.Minute)
	assert.Error(t, err)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	want := testPending(t)
	token, err := store.Put(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, want.Payload.Spaces(), got.Payload.Spaces())
	assert.Equal(t, want.Selection, got.Selection)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	p := testPending(t)
	token, err := store.Put(ctx, p)
	require.NoError(t, err)

	first, err := store.Get(ctx, token)
	require.NoError(t, err)
	first.Payload.Multi.Data.Spaces[0].Name = "changed"

	second, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Main", second.Payload.Spaces()[0].Name)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = (*RedisStore)(nil)
	var _ Store = (*MemoryStore)(nil)
}
