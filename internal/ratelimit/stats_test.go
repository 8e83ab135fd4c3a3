package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_CountsByRoute(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, StatsEvent{Allowed: true, Method: "POST", Path: "/api/candidate/step1"}))
	require.NoError(t, s.Record(ctx, StatsEvent{Allowed: false, Method: "POST", Path: "/api/candidate/step1"}))
	require.NoError(t, s.Record(ctx, StatsEvent{Allowed: true, Method: "GET", Path: "/api/candidate/session/x"}))

	assert.Equal(t, Counters{Allowed: 2, Denied: 1}, s.Total())
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, s.ByRoute()["POST /api/candidate/step1"])
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStatsStore_Record(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, "test:rl", time.Hour)
	ctx := context.Background()
	at := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, StatsEvent{Key: "1.2.3.4", Allowed: true, Method: "POST", Path: "/api/x", At: at}))
	require.NoError(t, s.Record(ctx, StatsEvent{Key: "1.2.3.4", Allowed: false, Method: "POST", Path: "/api/x", At: at}))

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counters{Allowed: 1, Denied: 1}, total)

	assert.Equal(t, "1", mr.HGet("test:rl:minute:202603040506", "denied"))
	assert.Equal(t, "1", mr.HGet("test:rl:route", "POST /api/x:allowed"))
	assert.True(t, mr.TTL("test:rl:minute:202603040506") > 0)
	assert.False(t, mr.Exists("test:rl:key:1.2.3.4"))
}

func TestRedisStatsStore_NilSafe(t *testing.T) {
	var s *RedisStatsStore
	assert.NoError(t, s.Record(context.Background(), StatsEvent{}))
}
