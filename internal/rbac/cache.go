package rbac

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PermissionCache caches permission rows by their (resource, action) key.
// Only hits are cached: permissions are never deleted in this system, so a
// cached row can't grant something the store wouldn't, and misses always
// fall through to the store, preserving deny-by-default.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewPermissionCache constructs a cache backed by the given Redis client.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	return &PermissionCache{client: client, ttl: ttl}
}

// Lookup returns the cached permission for the key, or loads it, caching the
// result on success. Concurrent misses for the same key are collapsed into a
// single load. Redis failures degrade to a plain load.
func (c *PermissionCache) Lookup(ctx context.Context, resource, action string, load func() (*Permission, error)) (*Permission, error) {
	key := "perm:" + resource + ":" + action

	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var perm Permission
		if err := json.Unmarshal(data, &perm); err == nil {
			return &perm, nil
		}
		// Unreadable entry: drop it and reload.
		c.client.Del(ctx, key)
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		perm, err := load()
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(perm); err == nil {
			c.client.Set(ctx, key, data, c.ttl)
		}
		return perm, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Permission), nil
}
