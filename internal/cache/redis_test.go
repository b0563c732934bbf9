package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	ok, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, out)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestNewRedis_EmptyAddrDisables(t *testing.T) {
	c, err := NewRedis(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())
}
