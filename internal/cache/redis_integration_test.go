//go:build integration

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kasap-service/internal/cache"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) *cache.RedisClient {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	addr, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	c, err := cache.NewRedisClient(addr, "", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedis_GetSetDel(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "order_stats:all"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := c.Set(ctx, "order_stats:all", `{"total":3}`, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get(ctx, "order_stats:all")
	if err != nil || v != `{"total":3}` {
		t.Fatalf("Get: %q %v", v, err)
	}
	if err := c.Del(ctx, "order_stats:all", "order_stats:unknown"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := c.Get(ctx, "order_stats:all"); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("expected miss after Del, got %v", err)
	}
	if err := c.Del(ctx); err != nil {
		t.Fatalf("Del without keys: %v", err)
	}
}

func TestRedis_AcquireCooldown(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()

	ok, err := c.AcquireCooldown(ctx, "password_reset:a@b.co", 2*time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = c.AcquireCooldown(ctx, "password_reset:a@b.co", 2*time.Second)
	if err != nil || ok {
		t.Fatalf("second acquire inside window: ok=%v err=%v", ok, err)
	}
	ok, _ = c.AcquireCooldown(ctx, "password_reset:c@d.co", 2*time.Second)
	if !ok {
		t.Fatalf("other keys must not share the window")
	}

	time.Sleep(2500 * time.Millisecond)
	ok, err = c.AcquireCooldown(ctx, "password_reset:a@b.co", 2*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}
}
