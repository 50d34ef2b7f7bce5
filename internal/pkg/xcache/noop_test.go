package xcache

import (
	"context"
	"testing"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	cache := NewNoop[bool]()

	require.NoError(t, cache.Set(ctx, "admin@nriit.edu.in", true, store.WithExpiration(time.Minute)))

	_, err := cache.Get(ctx, "admin@nriit.edu.in")
	assert.ErrorIs(t, err, ErrCacheNotConfigured)

	assert.NoError(t, cache.Delete(ctx, "admin@nriit.edu.in"))
	assert.NoError(t, cache.Clear(ctx))
	assert.NoError(t, cache.Invalidate(ctx))
	assert.Equal(t, "noop", cache.GetType())
}
