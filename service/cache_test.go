package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Local cache
// =============================================================================

func TestLocalCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(2, time.Hour)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "oldest entry evicted")

	v, ok, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(4, time.Hour)

	miss, err := getJSON[proxyEntry](ctx, c, "k")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, setJSON(ctx, c, "k", proxyEntry{DataURI: "data:x"}, 0))
	hit, err := getJSON[proxyEntry](ctx, c, "k")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "data:x", hit.DataURI)

	require.NoError(t, c.Set(ctx, "bad", []byte("{"), 0))
	_, err = getJSON[proxyEntry](ctx, c, "bad")
	assert.Error(t, err)
}

// =============================================================================
// Redis（需要 REDIS_ADDR）
// =============================================================================

func TestRedisService(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	s := NewRedisService(&config.RedisConfig{Addr: addr, TTL: time.Minute})
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	key := "test:" + t.Name()
	require.NoError(t, s.Set(ctx, key, []byte("v"), time.Minute))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	_, ok, err = s.Get(ctx, key+":missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
