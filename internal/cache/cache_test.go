package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/cache"
)

func TestMemory_Contract(t *testing.T) {
	cache.RunSequenceCacheContract(t, cache.NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := cache.NewMemory()
	ids := []int{1, 2}
	require.NoError(t, m.Set(ctx, "k", ids))
	ids[0] = 99

	got, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 42

	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []int{1, 2}, again)
	assert.Equal(t, 1, m.Len())
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedis_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	cache.RunSequenceCacheContract(t, cache.NewRedisFromClient(client))
}

func TestRedis_PrefixAndTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	c := cache.NewRedisFromClient(client, cache.WithPrefix("test:"), cache.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tree:1:abc", []int{3, 1}))
	assert.True(t, mr.Exists("test:tree:1:abc"))
	assert.Equal(t, time.Minute, mr.TTL("test:tree:1:abc"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "tree:1:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_CorruptValue(t *testing.T) {
	mr, client := newMiniredis(t)
	c := cache.NewRedisFromClient(client)
	require.NoError(t, mr.Set("skilltree:seq:bad", "not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedis_Ping(t *testing.T) {
	_, client := newMiniredis(t)
	c := cache.NewRedisFromClient(client)
	assert.NoError(t, c.Ping(context.Background()))
}
