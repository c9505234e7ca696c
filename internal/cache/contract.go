package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skilltree/internal/progress"
)

// RunSequenceCacheContract verifies that a progress.SequenceCache
// implementation behaves as the tracker expects.
func RunSequenceCacheContract(t *testing.T, c progress.SequenceCache) {
	ctx := context.Background()
	key := "tree:1:" + time.Now().Format("20060102150405")

	t.Run("Miss", func(t *testing.T) {
		ids, ok, err := c.Get(ctx, "missing-"+key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, ids)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, key, []int{4, 2, 9}))
		ids, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []int{4, 2, 9}, ids)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, key, []int{1}))
		ids, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []int{1}, ids)
	})

	t.Run("Empty sequence is a hit", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, key+"-empty", []int{}))
		_, ok, err := c.Get(ctx, key+"-empty")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
