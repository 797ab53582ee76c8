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

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return NewRedisKV(c, "hostel:"), mr
}

func TestRedisKV_GetSetDel(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t)

	_, err := kv.Get(ctx, "otp:a@example.com")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "otp:a@example.com", "123456", time.Minute))
	assert.True(t, mr.Exists("hostel:otp:a@example.com"))

	v, err := kv.Get(ctx, "otp:a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)

	require.NoError(t, kv.Del(ctx, "otp:a@example.com"))
	_, err = kv.Get(ctx, "otp:a@example.com")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Expiry(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t)

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	d, err := kv.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = kv.TTL(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Incr(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t)

	n, err := kv.Incr(ctx, "attempts", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = kv.Incr(ctx, "attempts", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, time.Minute, mr.TTL("hostel:attempts"))
}
