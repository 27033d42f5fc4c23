package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Get is a function that returns the value of a key
func (r *RedisInternal) Get(ctx context.Context, key string) *redis.StringCmd {
	return r.Redis.Get(ctx, key)
}

// Set is a function that sets a key value pair
func (r *RedisInternal) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return r.Redis.Set(ctx, key, value, expiration)
}

// Expire is a function that sets a key expiration time
func (r *RedisInternal) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return r.Redis.Expire(ctx, key, expiration)
}

// TTL is a function that returns the time to live of a key
func (r *RedisInternal) TTL(ctx context.Context, key string) *redis.DurationCmd {
	return r.Redis.TTL(ctx, key)
}

// Incr is a function that increments a key
func (r *RedisInternal) Incr(ctx context.Context, key string) *redis.IntCmd {
	return r.Redis.Incr(ctx, key)
}

// Del removes keys
func (r *RedisInternal) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return r.Redis.Del(ctx, keys...)
}
