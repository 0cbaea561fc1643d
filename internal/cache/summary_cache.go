// internal/cache/summary_cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSummaryCache stores computed campaign summaries. Campaigns never
// change after creation, so entries only expire.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(addr string, ttl time.Duration) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func summaryKey(campaignID int) string {
	return fmt.Sprintf("campaign:%d:summary", campaignID)
}

// Get reports ok=false on a miss.
func (c *RedisSummaryCache) Get(ctx context.Context, campaignID int) (string, bool, error) {
	summary, err := c.client.Get(ctx, summaryKey(campaignID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, campaignID int, summary string) error {
	if err := c.client.Set(ctx, summaryKey(campaignID), summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}
