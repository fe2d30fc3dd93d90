package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func stubRedis(t *testing.T, pingErr error) *string {
	t.Helper()

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return pingErr
	}
	return &capturedAddr
}

func TestInitRedisWithCustomAddr(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := InitRedis(context.Background(), "redis:9999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *addr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", *addr)
	}
	if client == nil || Client != client {
		t.Fatal("expected package client to be set")
	}
}

func TestInitRedisWithURL(t *testing.T) {
	addr := stubRedis(t, nil)

	if _, err := InitRedis(context.Background(), "redis://cache.internal:6380/2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *addr != "cache.internal:6380" {
		t.Fatalf("expected parsed addr, got %s", *addr)
	}
}

func TestInitRedisDisabledWithoutAddr(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := InitRedis(context.Background(), "  ")
	if err != nil || client != nil {
		t.Fatalf("expected disabled cache, got client=%v err=%v", client, err)
	}
	if *addr != "" {
		t.Fatal("no client should be created")
	}
}

func TestInitRedisPingFailure(t *testing.T) {
	stubRedis(t, errors.New("refused"))

	if _, err := InitRedis(context.Background(), "localhost:6379"); err == nil {
		t.Fatal("expected connection error")
	}
	if Client != nil {
		t.Fatal("client must not be kept after a failed ping")
	}
}
