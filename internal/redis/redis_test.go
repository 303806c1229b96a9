package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	inner := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return Wrap(inner), mr
}

func TestSetGetDel(t *testing.T) {
	client, _ := newTestClient(t)
	defer client.Close()
	ctx := context.Background()

	if err := client.Set(ctx, "tool:weather:rome", "sunny", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, "tool:weather:rome")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "sunny" {
		t.Fatalf("get mismatch: %q", got)
	}

	if err := client.Del(ctx, "tool:weather:rome"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "tool:weather:rome"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss after delete, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	defer client.Close()
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", 30*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestNilClientIsNoOpCache(t *testing.T) {
	var client *Client
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("nil set should be dropped, got %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("nil get should miss, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
