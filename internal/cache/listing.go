// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// listing.go provides a Redis-backed cache for template catalog
// listings. Popular-templates and category queries hit every catalog
// page load, so their JSON responses are cached and invalidated
// whenever any template is written.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listingKeyPrefix is the Redis key prefix for cached listings.
	listingKeyPrefix = "listing:"

	// DefaultListingTTL is how long a catalog listing stays cached.
	DefaultListingTTL = 5 * time.Minute
)

// ListingCache caches serialized catalog listings in Redis.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListingCache creates a listing cache backed by the given Redis client.
func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl == 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get retrieves a cached listing by key. Returns false on miss.
func (lc *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := lc.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("listing cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("listing cache hit", "key", key)
	return val, true
}

// Set stores a serialized listing with the configured TTL.
func (lc *ListingCache) Set(ctx context.Context, key string, payload []byte) {
	if err := lc.client.Set(ctx, listingKeyPrefix+key, payload, lc.ttl).Err(); err != nil {
		slog.Warn("listing cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached listing. Called after any template
// create, update, delete, clone or publish, since any listing could be
// affected.
func (lc *ListingCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("listing cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("listing cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("listing cache cleared", "deleted", deleted)
	}
}

// CategoriesKey is the cache key for the distinct-categories listing.
func CategoriesKey() string {
	return "categories"
}

// PopularKey returns the cache key for the popular-templates listing.
func PopularKey(limit int) string {
	return "popular:" + strconv.Itoa(limit)
}

// HighlyRatedKey returns the cache key for the highly-rated listing.
func HighlyRatedKey(limit int) string {
	return "rated:" + strconv.Itoa(limit)
}
