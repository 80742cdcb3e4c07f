package quota

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreForTest(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreCountsWithinWindow(t *testing.T) {
	store := newRedisStoreForTest(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, _, err := store.ResetAndIncrement(ctx, "notify:company-1", time.Hour)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}
}

func TestRedisStoreExpiryStartsFreshWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, _, err := store.ResetAndIncrement(ctx, "notify:company-2", time.Hour); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	mr.FastForward(time.Hour + time.Second)

	count, _, err := store.ResetAndIncrement(ctx, "notify:company-2", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected fresh window to count from 1, got %d", count)
	}
}

func TestRedisStoreTrackerDeniesSixthCall(t *testing.T) {
	store := newRedisStoreForTest(t)
	tracker := NewTracker(store, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		decision, err := tracker.CheckAndIncrement(ctx, "notify:company-3", 5, 24*time.Hour)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("call %d: expected allowed", i)
		}
	}

	decision, err := tracker.CheckAndIncrement(ctx, "notify:company-3", 5, 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Remaining != 0 {
		t.Fatalf("expected sixth call denied with remaining 0, got allowed=%v remaining=%d", decision.Allowed, decision.Remaining)
	}
}

func TestRedisStoreSubjectsUseSeparateKeys(t *testing.T) {
	store := newRedisStoreForTest(t)
	ctx := context.Background()

	if _, _, err := store.ResetAndIncrement(ctx, "notify:a", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, _, err := store.ResetAndIncrement(ctx, "notify:b", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected independent counter for second subject, got %d", count)
	}
}
