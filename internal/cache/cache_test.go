package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T) *RedisCache {
	t.Helper()

	mr := miniredis.RunT(t)
	c := NewRedisCacheFromAddr(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_SetGet(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "leaderboard:global", `[{"rank":1}]`, time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	val, err := c.Get(ctx, "leaderboard:global")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != `[{"rank":1}]` {
		t.Errorf("Expected cached payload, got %q", val)
	}
}

func TestRedisCache_GetMissingKey(t *testing.T) {
	c := setupTestCache(t)

	val, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() on missing key should not error, got %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty string for missing key, got %q", val)
	}
}

func TestRedisCache_Del(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := c.Del(ctx, "k1", "k2"); err != nil {
		t.Fatalf("Del() failed: %v", err)
	}

	val, err := c.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected key deleted, got %q", val)
	}
}

func TestRedisCache_Health(t *testing.T) {
	c := setupTestCache(t)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() failed: %v", err)
	}
}
