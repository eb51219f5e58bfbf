// Package cache adapts Redis into the key/value storage used by the rate limiter.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"careerboard/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "careerboard:"

// Redis implements fiber.Storage. A Redis error on any call falls back to an in-process
// store so counters keep working on this instance; a warning is logged the first time.
type Redis struct {
	client   *redis.Client
	logger   *log.Logger
	prefix   string
	fallback *memoryStore

	warnedUnavailable atomic.Bool
}

// NewRedis returns nil when no address is configured or the server does not answer a ping.
func NewRedis(cfg config.RedisConfig, logger *log.Logger) *Redis {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = log.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("[Cache] Redis unavailable, using in-process counters: %v", err)
		_ = client.Close()
		return nil
	}

	return newWithClient(client, logger)
}

func newWithClient(client *redis.Client, logger *log.Logger) *Redis {
	return &Redis{client: client, logger: logger, prefix: keyPrefix, fallback: newMemoryStore()}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Cache] Redis error, using in-process fallback: %v", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	if r.isUnavailable() || key == "" {
		return nil, nil
	}
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return r.fallback.get(key), nil
	case err != nil:
		r.warnUnavailableOnce(err)
		return r.fallback.get(key), nil
	}
	return b, nil
}

func (r *Redis) Get(key string) ([]byte, error) {
	return r.GetWithContext(context.Background(), key)
}

func (r *Redis) SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if r.isUnavailable() || key == "" || len(val) == 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+key, val, exp).Err(); err != nil {
		r.warnUnavailableOnce(err)
		r.fallback.set(key, val, exp)
		return nil
	}
	r.fallback.delete(key)
	return nil
}

func (r *Redis) Set(key string, val []byte, exp time.Duration) error {
	return r.SetWithContext(context.Background(), key, val, exp)
}

func (r *Redis) DeleteWithContext(ctx context.Context, key string) error {
	if r.isUnavailable() || key == "" {
		return nil
	}
	r.fallback.delete(key)
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.warnUnavailableOnce(err)
	}
	return nil
}

func (r *Redis) Delete(key string) error {
	return r.DeleteWithContext(context.Background(), key)
}

// ResetWithContext removes every key written through this storage.
func (r *Redis) ResetWithContext(ctx context.Context) error {
	if r.isUnavailable() {
		return nil
	}
	r.fallback.reset()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Printf("[Cache] Redis delete error key=%s err=%v", k, err)
		}
	}
	return iter.Err()
}

func (r *Redis) Reset() error {
	return r.ResetWithContext(context.Background())
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}
