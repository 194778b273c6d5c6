package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/call-manager-team/call-manager/pkg/config"
)

// RedisClient wraps a go-redis client behind the small key-value surface
// the rest of the application uses.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Set stores a key-value pair with expiration
func (rc *RedisClient) Set(key string, value string, expiration time.Duration) {
	rc.client.Set(context.Background(), key, value, expiration)
}

// Get retrieves a value by key
func (rc *RedisClient) Get(key string) (string, bool) {
	value, err := rc.client.Get(context.Background(), key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

// Delete removes a key
func (rc *RedisClient) Delete(key string) {
	rc.client.Del(context.Background(), key)
}

// SetBytes stores a binary payload with expiration
func (rc *RedisClient) SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return rc.client.Set(ctx, key, value, expiration).Err()
}

// GetBytes retrieves a binary payload by key. Returns (nil, nil) on a miss.
func (rc *RedisClient) GetBytes(ctx context.Context, key string) ([]byte, error) {
	value, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// DeleteKeys removes keys, ignoring misses
func (rc *RedisClient) DeleteKeys(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}

// Close closes the underlying connection
func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
