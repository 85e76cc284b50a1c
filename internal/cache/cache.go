// Package cache provides Redis-backed caching for channel profiles and
// counters for login throttling.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Channel Profile Cache Operations

// SetChannelProfile caches a resolved channel profile for a viewer.
func (c *Cache) SetChannelProfile(ctx context.Context, viewerID string, profile *models.ChannelProfile, ttl time.Duration) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal channel profile: %w", err)
	}

	key := fmt.Sprintf("channel:%s:viewer:%s", profile.Username, viewerID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetChannelProfile retrieves a cached channel profile for a viewer.
func (c *Cache) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	key := fmt.Sprintf("channel:%s:viewer:%s", username, viewerID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get channel profile from cache: %w", err)
	}

	var profile models.ChannelProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel profile: %w", err)
	}

	return &profile, nil
}

// InvalidateChannel drops every cached view of a channel. Called after
// subscription toggles and profile updates.
func (c *Cache) InvalidateChannel(ctx context.Context, username string) error {
	pattern := fmt.Sprintf("channel:%s:viewer:*", username)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Login throttle operations

// CheckLoginAttempts checks whether another login attempt is allowed for an
// identifier within the window.
func (c *Cache) CheckLoginAttempts(ctx context.Context, identifier string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("login:attempts:%s", identifier)

	// Increment counter
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment login attempts: %w", err)
	}

	// Set expiry on first attempt
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	return count <= limit, nil
}

// ResetLoginAttempts clears the attempt counter after a successful login.
func (c *Cache) ResetLoginAttempts(ctx context.Context, identifier string) error {
	key := fmt.Sprintf("login:attempts:%s", identifier)
	return c.client.Del(ctx, key).Err()
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
