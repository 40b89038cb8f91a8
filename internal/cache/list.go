// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces cached values in Valkey.
	keyPrefix = "blogcore:cache:"

	// DefaultTTL is how long a cached value lives.
	DefaultTTL = 5 * time.Minute
)

// JSON stores values as JSON in Valkey. Errors are logged and treated as
// misses so a cache outage never fails a request.
type JSON struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJSON creates a JSON cache backed by the given Valkey client.
func NewJSON(client *redis.Client, ttl time.Duration) *JSON {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &JSON{client: client, ttl: ttl}
}

// Get decodes the value stored under key into dst. Returns false on a miss.
func (c *JSON) Get(ctx context.Context, key string, dst any) bool {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("cache hit", "key", key)
	return true
}

// Set stores v under key with the configured TTL.
func (c *JSON) Set(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, payload, c.ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

// Invalidate removes key from the cache.
func (c *JSON) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		slog.Warn("cache invalidate error", "key", key, "error", err)
		return
	}
	slog.Debug("cache invalidated", "key", key)
}
