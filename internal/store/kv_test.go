package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSetMiss(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "k", "v", 0))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRedisKV_TTL(t *testing.T) {
	mr, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_GetDelIsSingleUse(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	v, err := kv.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = kv.GetDel(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SwapAndDel(t *testing.T) {
	mr, kv := setupKV(t)
	ctx := context.Background()

	_, err := kv.Swap(ctx, "p", "one", time.Minute)
	assert.ErrorIs(t, err, ErrMiss)

	prev, err := kv.Swap(ctx, "p", "two", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "one", prev)
	assert.Equal(t, time.Minute, mr.TTL("p"))

	v, err := kv.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	require.NoError(t, kv.Set(ctx, "q", "x", 0))
	require.NoError(t, kv.Del(ctx, "p", "q"))
	require.NoError(t, kv.Del(ctx))
	_, err = kv.Get(ctx, "p")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = kv.Get(ctx, "q")
	assert.ErrorIs(t, err, ErrMiss)
}
