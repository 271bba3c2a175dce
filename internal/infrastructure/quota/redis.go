package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisTracker shares counters between processes. Each counter expires at
// the midnight after the day it counts.
type RedisTracker struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisClient connects and pings before returning.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func NewRedisTracker(rdb redis.UniversalClient, prefix string) *RedisTracker {
	return &RedisTracker{rdb: rdb, prefix: prefix}
}

func (t *RedisTracker) Used(ctx context.Context, providerID string, day time.Time) (int, error) {
	raw, err := t.rdb.Get(ctx, t.key(providerID, day)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quota counter: %w", err)
	}
	used, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse quota counter %q: %w", raw, err)
	}
	return used, nil
}

func (t *RedisTracker) Increment(ctx context.Context, providerID string, day time.Time) (int, error) {
	key := t.key(providerID, day)
	var incr *redis.IntCmd
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, keypool.NextMidnight(day))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment quota counter: %w", err)
	}
	return int(incr.Val()), nil
}

func (t *RedisTracker) Exhaust(ctx context.Context, providerID string, day time.Time, limit int) error {
	if limit <= 0 {
		return nil
	}
	key := t.key(providerID, day)
	if err := t.rdb.Set(ctx, key, limit, 0).Err(); err != nil {
		return fmt.Errorf("exhaust quota counter: %w", err)
	}
	if err := t.rdb.ExpireAt(ctx, key, keypool.NextMidnight(day)).Err(); err != nil {
		return fmt.Errorf("expire quota counter: %w", err)
	}
	return nil
}

func (t *RedisTracker) key(providerID string, day time.Time) string {
	return t.prefix + keypool.QuotaKey(providerID, day)
}
