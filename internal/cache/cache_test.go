package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Cache{New("", 0), New("not-a-url://", 0), nil} {
		if c.Enabled() {
			t.Fatalf("expected disabled cache")
		}
		if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}); err != nil {
			t.Fatalf("set: %v", err)
		}
		b, err := c.Get(ctx, "k")
		if err != nil || b != nil {
			t.Fatalf("expected miss, got %q %v", b, err)
		}
		if err := c.Delete(ctx, "k"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestNewWithClientDefaultsTTL(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	c := NewWithClient(rdb, 0)
	defer c.Close()
	if !c.Enabled() || c.ttl != DefaultTTL {
		t.Fatalf("enabled=%v ttl=%s", c.Enabled(), c.ttl)
	}
}

func TestKeys(t *testing.T) {
	if OpportunitiesKey("tech") != "trendforge:opportunities:tech" {
		t.Fatalf("unexpected keys")
	}
}
