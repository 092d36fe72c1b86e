package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"transfers/internal/utils"
)

const keyPrefix = "transfers:catalog:"

// Redis shares the catalog cache between replicas. Errors degrade to cache misses.
type Redis struct {
	Client *redis.Client
}

// NewRedisClient parses REDIS_URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := r.Client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.Log.WithError(err).WithField("key", key).Warn("catalog cache get failed")
		}
		return nil, false
	}
	return v, true
}

func (r Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.Client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		utils.Log.WithError(err).WithField("key", key).Warn("catalog cache set failed")
	}
}
