package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisInternal is a struct that contains a Redis client
type RedisInternal struct {
	Redis *redis.Client
}

// Config holds the Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// ConfigFromEnv reads REDIS_ADDR, REDIS_PASSWORD and REDIS_DB
func ConfigFromEnv() Config {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return Config{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	}
}

// NewRedisInternal conecta ao Redis. Sem REDIS_ADDR tenta redis:6379 e
// depois localhost:6379.
func NewRedisInternal(cfg Config) (*RedisInternal, error) {
	addrs := []string{cfg.Addr}
	if cfg.Addr == "" {
		addrs = []string{"redis:6379", "localhost:6379"}
	}

	var lastErr error
	for _, addr := range addrs {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			lastErr = err
			_ = rdb.Close()
			continue
		}
		return &RedisInternal{Redis: rdb}, nil
	}

	return nil, fmt.Errorf("connecting to Redis: %w", lastErr)
}

// Ping checks the connection
func (r *RedisInternal) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}

// Close closes the client
func (r *RedisInternal) Close() error {
	return r.Redis.Close()
}
