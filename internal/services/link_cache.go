package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"paidlinks-api/internal/models"
	"paidlinks-api/pkg/logging"
)

// LinkCache is a read-through cache of public link lookups keyed by slug.
// Every write to a link must Invalidate its slug.
type LinkCache interface {
	Get(ctx context.Context, slug string) (*models.PaidLink, bool)
	Set(ctx context.Context, link *models.PaidLink)
	Invalidate(ctx context.Context, slug string)
}

// RedisLinkCache stores links as JSON strings with a TTL
type RedisLinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLinkCache creates a Redis backed cache
func NewRedisLinkCache(client *redis.Client, ttl time.Duration) *RedisLinkCache {
	return &RedisLinkCache{client: client, ttl: ttl}
}

func linkCacheKey(slug string) string {
	return fmt.Sprintf("paid_link:slug:%s", slug)
}

// Get returns the cached link, if any. Redis errors count as a miss.
func (c *RedisLinkCache) Get(ctx context.Context, slug string) (*models.PaidLink, bool) {
	raw, err := c.client.Get(ctx, linkCacheKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warnf("Link cache read failed - slug: %s, error: %v", slug, err)
		}
		return nil, false
	}

	var link models.PaidLink
	if err := json.Unmarshal(raw, &link); err != nil {
		logging.Warnf("Link cache entry corrupt - slug: %s, error: %v", slug, err)
		c.Invalidate(ctx, slug)
		return nil, false
	}
	return &link, true
}

// Set stores a link under its slug
func (c *RedisLinkCache) Set(ctx context.Context, link *models.PaidLink) {
	raw, err := json.Marshal(link)
	if err != nil {
		logging.Warnf("Link cache encode failed - slug: %s, error: %v", link.Slug, err)
		return
	}
	if err := c.client.Set(ctx, linkCacheKey(link.Slug), raw, c.ttl).Err(); err != nil {
		logging.Warnf("Link cache write failed - slug: %s, error: %v", link.Slug, err)
	}
}

// Invalidate drops the entry for slug
func (c *RedisLinkCache) Invalidate(ctx context.Context, slug string) {
	if err := c.client.Del(ctx, linkCacheKey(slug)).Err(); err != nil {
		logging.Warnf("Link cache invalidate failed - slug: %s, error: %v", slug, err)
	}
}

// NopLinkCache never caches
type NopLinkCache struct{}

func (NopLinkCache) Get(context.Context, string) (*models.PaidLink, bool) { return nil, false }
func (NopLinkCache) Set(context.Context, *models.PaidLink)                {}
func (NopLinkCache) Invalidate(context.Context, string)                   {}
