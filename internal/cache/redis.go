package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

const (
	dialTimeout     = 5 * time.Second
	cooldownPrefix  = "cooldown:"
	cooldownPayload = "1"
)

// RedisClient backs the order statistics cache and the password reset cooldown.
type RedisClient struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	log.Info("redis connected", zap.String("addr", addr), zap.Int("db", db))
	return &RedisClient{rdb: rdb, log: log}, nil
}

func (r *RedisClient) Close() error { return r.rdb.Close() }

func (r *RedisClient) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// AcquireCooldown opens a window for key with SET NX, so two concurrent
// callers cannot both get through.
func (r *RedisClient) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, cooldownPrefix+key, cooldownPayload, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire cooldown %q: %w", key, err)
	}
	if !ok {
		r.log.Debug("cooldown active", zap.String("key", key))
	}
	return ok, nil
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}
