package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "neelosewa:listings:"
	versionKey = keyPrefix + "version"
)

// ListingCache keeps public search results in Redis. Keys embed a version
// counter; Invalidate bumps it so every earlier entry is orphaned and left to
// expire.
type ListingCache struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func NewListingCache(addr, password string, db int, ttl time.Duration) *ListingCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &ListingCache{Client: client, TTL: ttl}
}

func (c *ListingCache) version(ctx context.Context) (int64, error) {
	v, err := c.Client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *ListingCache) key(ctx context.Context, name string) (string, error) {
	v, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sv%d:%s", keyPrefix, v, name), nil
}

// Get decodes the cached value into dst; ok is false on a miss.
func (c *ListingCache) Get(ctx context.Context, name string, dst any) (bool, error) {
	key, err := c.key(ctx, name)
	if err != nil {
		return false, err
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ListingCache) Set(ctx context.Context, name string, v any) error {
	key, err := c.key(ctx, name)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return c.Client.Set(ctx, key, raw, ttl).Err()
}

func (c *ListingCache) Invalidate(ctx context.Context) error {
	return c.Client.Incr(ctx, versionKey).Err()
}

func (c *ListingCache) Close() error {
	return c.Client.Close()
}
