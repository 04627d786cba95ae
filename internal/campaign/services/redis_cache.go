package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/database"
)

const sessionCacheKeyPrefix = "stormbringer:session:"

// RedisCacheProvider keeps each session's campaign list under one Redis key
type RedisCacheProvider struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewRedisCacheProvider creates a provider whose entries expire after ttl
func NewRedisCacheProvider(redis *database.Redis, ttl time.Duration) *RedisCacheProvider {
	return &RedisCacheProvider{redis: redis, ttl: ttl}
}

// ForSession returns the cache of sessionID
func (p *RedisCacheProvider) ForSession(sessionID string) SessionCache {
	return &RedisSessionCache{
		redis: p.redis,
		key:   sessionCacheKeyPrefix + sessionID + ":campaigns",
		ttl:   p.ttl,
	}
}

// RedisSessionCache stores the session's list as one JSON value, rewritten
// wholesale on every change
type RedisSessionCache struct {
	redis *database.Redis
	key   string
	ttl   time.Duration
}

func (c *RedisSessionCache) load(ctx context.Context) (records, error) {
	var entries records
	if err := c.redis.GetJSON(ctx, c.key, &entries); err != nil {
		if errors.Is(err, database.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}
	return entries, nil
}

func (c *RedisSessionCache) save(ctx context.Context, entries records) error {
	if err := c.redis.SetJSON(ctx, c.key, entries, c.ttl); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Get(ctx context.Context, id string) (*models.Campaign, bool, error) {
	entries, err := c.load(ctx)
	if err != nil {
		return nil, false, err
	}
	return entries.find(id)
}

func (c *RedisSessionCache) List(ctx context.Context) ([]models.Campaign, error) {
	entries, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return entries.decode(ctx), nil
}

func (c *RedisSessionCache) UpsertFront(ctx context.Context, campaign *models.Campaign) error {
	entries, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, entries.upsertFront(campaign))
}

func (c *RedisSessionCache) Remove(ctx context.Context, id string) error {
	entries, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.save(ctx, entries.without(id))
}

func (c *RedisSessionCache) Clear(ctx context.Context) error {
	if err := c.redis.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("failed to clear session cache: %w", err)
	}
	return nil
}
