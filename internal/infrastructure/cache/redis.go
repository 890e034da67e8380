package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"getjobs/internal/config"
	"getjobs/internal/pkg/logging"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultLockTTL = 30 * time.Second
	scanBatch      = 100
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis is a best-effort cache. Without a reachable server reads miss,
// writes are dropped and locks are always granted, so callers fall through
// to the database.
type Redis struct {
	client *redis.Client
	logger *logging.Logger
	ttl    time.Duration

	degraded atomic.Bool
}

func NewRedis(cfg config.RedisConfig, logger *logging.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cache disabled", "addr", cfg.Addr, "err", err)
		_ = client.Close()
		client = nil
	}
	return NewRedisWithClient(client, logger, cfg.TTL)
}

// NewRedisWithClient wraps an existing client. A nil client yields a cache
// in bypass mode.
func NewRedisWithClient(client *redis.Client, logger *logging.Logger, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, logger: logger, ttl: ttl}
}

func (r *Redis) bypass() bool {
	return r == nil || r.client == nil
}

// observe reports the first transport failure and passes err through.
func (r *Redis) observe(err error) error {
	if err != nil && !errors.Is(err, redis.Nil) && r.degraded.CompareAndSwap(false, true) {
		r.logger.Warn("redis request failed, serving from database", "err", err)
	}
	return err
}

func (r *Redis) Close() error {
	if r.bypass() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.bypass() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

// GetJSON decodes the value at key into out and reports whether it was found.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.bypass() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, r.observe(err)
	case len(b) == 0:
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.bypass() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.observe(r.client.Set(ctx, key, b, ttl).Err())
}

// DeleteByPattern removes every key matching pattern, unlinking one SCAN page
// at a time.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if r.bypass() || pattern == "" {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return r.observe(err)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return r.observe(err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// SetIfNotExists reports whether the key was set. In bypass mode it reports
// true so that locks never block work outright.
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if r.bypass() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, r.observe(err)
	}
	return ok, nil
}

// Incr bumps the counter at key and returns its new value. A positive ttl is
// applied when the counter is created. In bypass mode it returns zero.
func (r *Redis) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if r.bypass() {
		return 0, nil
	}
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, r.observe(err)
	}
	if n == 1 && ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, r.observe(err)
		}
	}
	return n, nil
}

// GetInt returns the counter at key, zero when it is unset.
func (r *Redis) GetInt(ctx context.Context, key string) (int64, error) {
	if r.bypass() {
		return 0, nil
	}
	n, err := r.client.Get(ctx, key).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, r.observe(err)
	}
	return n, nil
}
