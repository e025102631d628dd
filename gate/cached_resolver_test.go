package gate

import (
	"context"
	"testing"
	"time"
)

func TestCachedResolver_CachesUntilExpiry(t *testing.T) {
	inner := NewStaticResolver[uint]()
	inner.Set(1, NewStaticProfile("staff"))

	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cached := NewCachedResolver[uint](inner, time.Minute)
	cached.now = func() time.Time { return clock }

	p, err := cached.Resolve(context.Background(), 1)
	if err != nil || p.Name() != "staff" {
		t.Fatalf("first resolve: %v %v", p, err)
	}

	inner.Set(1, NewStaticProfile("admin"))
	if p, _ := cached.Resolve(context.Background(), 1); p.Name() != "staff" {
		t.Errorf("expected cached 'staff', got '%s'", p.Name())
	}

	clock = clock.Add(2 * time.Minute)
	if p, _ := cached.Resolve(context.Background(), 1); p.Name() != "admin" {
		t.Errorf("expected refreshed 'admin', got '%s'", p.Name())
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := NewStaticResolver[uint]()
	inner.Set(1, NewStaticProfile("staff"))
	inner.Set(2, NewStaticProfile("staff"))
	cached := NewCachedResolver[uint](inner, time.Hour)
	ctx := context.Background()
	_, _ = cached.Resolve(ctx, 1)
	_, _ = cached.Resolve(ctx, 2)

	inner.Set(1, NewStaticProfile("admin"))
	inner.Set(2, NewStaticProfile("admin"))

	cached.Invalidate(1)
	if p, _ := cached.Resolve(ctx, 1); p.Name() != "admin" {
		t.Errorf("expected 'admin' after invalidate, got '%s'", p.Name())
	}
	if p, _ := cached.Resolve(ctx, 2); p.Name() != "staff" {
		t.Errorf("user 2 should still be cached, got '%s'", p.Name())
	}
}
