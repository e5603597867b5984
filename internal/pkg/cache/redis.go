package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
	RetryDelay time.Duration
}

// NewRedisClient connects and pings, retrying up to opts.MaxRetries times.
func NewRedisClient(ctx context.Context, opts Options, logger ...*zap.Logger) (*redis.Client, error) {
	l := zap.L().Named("cache.redis")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cache.redis")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	var lastErr error
	for i := 1; i <= opts.MaxRetries; i++ {
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			l.Info("connected to redis", zap.String("addr", opts.Addr))
			return rdb, nil
		}
		l.Warn("redis ping failed",
			zap.Int("attempt", i),
			zap.Int("max_retries", opts.MaxRetries),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis after %d retries: %w", opts.MaxRetries, lastErr)
}

// GetJSON decodes the value at key into dst. found is false on a miss.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, dst interface{}) (found bool, err error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}
