package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore aggregates decisions into Redis hashes so several instances share one view.
// Per-identifier keys are never written to keep cardinality bounded.
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStatsStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStatsStore {
	if prefix == "" {
		prefix = "hireprep:ratelimit"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStatsStore{rdb: rdb, prefix: strings.Trim(prefix, ":"), ttl: ttl}
}

func (s *RedisStatsStore) Record(ctx context.Context, ev StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	pipe.Expire(ctx, bucketKey, s.ttl)
	if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) Total(ctx context.Context) (Counters, error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return Counters{}, err
	}
	var c Counters
	c.Allowed, _ = strconv.ParseInt(vals["allowed"], 10, 64)
	c.Denied, _ = strconv.ParseInt(vals["denied"], 10, 64)
	return c, nil
}
