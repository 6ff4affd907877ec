package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))

	var got map[string]int
	assert.False(t, c.Get(ctx, "k", &got))
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "6379", cfg.Port)
	assert.NotEmpty(t, cfg.Prefix)
}
