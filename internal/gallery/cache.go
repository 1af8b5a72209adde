package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores the last scraped image list.
type Cache interface {
	Get(ctx context.Context) ([]Image, bool, error)
	Set(ctx context.Context, images []Image) error
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context) ([]Image, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, []Image) error         { return nil }

// RedisCache keeps the image list as a JSON string under a single key.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, key string, ttl time.Duration) *RedisCache {
	if key == "" {
		key = "gallery:images"
	}
	return &RedisCache{client: client, key: key, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]Image, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("gallery: redis get: %w", err)
	}
	var images []Image
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, false, fmt.Errorf("gallery: decode cached images: %w", err)
	}
	return images, len(images) > 0, nil
}

func (c *RedisCache) Set(ctx context.Context, images []Image) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("gallery: encode images: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("gallery: redis set: %w", err)
	}
	return nil
}
