package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisRecommendationCache keeps recommendation lists in Redis with a TTL
type RedisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecommendationCache creates a cache on an existing client
func NewRedisRecommendationCache(client *redis.Client, ttl time.Duration) *RedisRecommendationCache {
	return &RedisRecommendationCache{client: client, ttl: ttl}
}

func recommendationKey(userID int) string {
	return fmt.Sprintf("recommendations:user:%d", userID)
}

// Get returns the cached list, reporting false on a miss
func (c *RedisRecommendationCache) Get(ctx context.Context, userID int) ([]*models.Event, bool, error) {
	raw, err := c.client.Get(ctx, recommendationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read recommendations: %w", err)
	}

	var events []*models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, false, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return events, true, nil
}

// Set stores the list for the configured TTL
func (c *RedisRecommendationCache) Set(ctx context.Context, userID int, events []*models.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	if err := c.client.Set(ctx, recommendationKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write recommendations: %w", err)
	}
	return nil
}

// Invalidate removes the user's cached list
func (c *RedisRecommendationCache) Invalidate(ctx context.Context, userID int) error {
	if err := c.client.Del(ctx, recommendationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate recommendations: %w", err)
	}
	return nil
}

// NewRedisClient connects to Redis. It returns nil when no address is
// configured or the server does not answer, and callers run without a cache.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis at %s unavailable, recommendations are not cached: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}
