package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

func newTestCache(t *testing.T) (*PermissionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPermissionCache(client, time.Minute), mr
}

func TestPermissionCacheHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	perm := &Permission{ID: uuid.New(), Name: "view dashboard", Resource: "dashboard", Action: "view"}
	loads := 0
	load := func() (*Permission, error) {
		loads++
		return perm, nil
	}

	got, err := cache.Lookup(ctx, "dashboard", "view", load)
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)
	assert.Equal(t, 1, loads)

	got, err = cache.Lookup(ctx, "dashboard", "view", load)
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)
	assert.Equal(t, 1, loads, "second lookup must come from the cache")
}

func TestPermissionCacheMissNotCached(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	_, err := cache.Lookup(ctx, "dashboard", "view", func() (*Permission, error) {
		loads++
		return nil, shared.ErrNotFound
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Once the permission appears, the lookup must see it.
	perm := &Permission{ID: uuid.New(), Name: "view dashboard", Resource: "dashboard", Action: "view"}
	got, err := cache.Lookup(ctx, "dashboard", "view", func() (*Permission, error) {
		loads++
		return perm, nil
	})
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)
	assert.Equal(t, 2, loads)
}

func TestPermissionCacheCorruptEntryReloaded(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("perm:dashboard:view", "{not json"))

	perm := &Permission{ID: uuid.New(), Name: "view dashboard", Resource: "dashboard", Action: "view"}
	got, err := cache.Lookup(ctx, "dashboard", "view", func() (*Permission, error) {
		return perm, nil
	})
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)
}

func TestPermissionCacheRedisDownDegradesToLoad(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	perm := &Permission{ID: uuid.New(), Name: "view dashboard", Resource: "dashboard", Action: "view"}
	got, err := cache.Lookup(ctx, "dashboard", "view", func() (*Permission, error) {
		return perm, nil
	})
	require.NoError(t, err)
	assert.Equal(t, perm.ID, got.ID)

	_, err = cache.Lookup(ctx, "dashboard", "edit", func() (*Permission, error) {
		return nil, errors.New("store down too")
	})
	assert.Error(t, err)
}
