package quota

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSixthCallWithinWindowIsDenied(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		decision, err := tracker.CheckAndIncrement(ctx, "notify:company-1", 5, 24*time.Hour)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("call %d: expected allowed", i)
		}
		if want := int64(5 - i); decision.Remaining != want {
			t.Fatalf("call %d: expected remaining %d, got %d", i, want, decision.Remaining)
		}
	}

	decision, err := tracker.CheckAndIncrement(ctx, "notify:company-1", 5, 24*time.Hour)
	if err != nil {
		t.Fatalf("sixth call: unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("sixth call: expected denied")
	}
	if decision.Remaining != 0 {
		t.Fatalf("sixth call: expected remaining 0, got %d", decision.Remaining)
	}
}

func TestUnlimitedSubjectIsAlwaysAllowed(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(), nil)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		decision, err := tracker.CheckAndIncrement(ctx, "ai:tenant-1", Unlimited, time.Hour)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !decision.Allowed {
			t.Fatal("expected unlimited subject to always be allowed")
		}
		if decision.Remaining != Unlimited {
			t.Fatalf("expected remaining -1, got %d", decision.Remaining)
		}
	}
}

func TestElapsedWindowResetsCounterToOne(t *testing.T) {
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return current }
	tracker := NewTracker(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := tracker.CheckAndIncrement(ctx, "notify:company-2", 3, time.Hour); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	decision, _ := tracker.CheckAndIncrement(ctx, "notify:company-2", 3, time.Hour)
	if decision.Allowed {
		t.Fatal("expected fourth call within window to be denied")
	}

	current = current.Add(time.Hour + time.Second)

	decision, err := tracker.CheckAndIncrement(ctx, "notify:company-2", 3, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("expected first call of new window to be allowed")
	}
	if decision.Remaining != 2 {
		t.Fatalf("expected counter reset to 1 leaving remaining 2, got %d", decision.Remaining)
	}
}

func TestSubjectsAreIndependent(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(), nil)
	ctx := context.Background()

	if _, err := tracker.CheckAndIncrement(ctx, "notify:a", 1, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocked, _ := tracker.CheckAndIncrement(ctx, "notify:a", 1, time.Hour)
	if blocked.Allowed {
		t.Fatal("expected subject a to be exhausted")
	}

	other, err := tracker.CheckAndIncrement(ctx, "notify:b", 1, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.Allowed {
		t.Fatal("expected subject b to be unaffected by subject a")
	}
}

func TestConcurrentCallsNeverExceedLimit(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(), nil)
	ctx := context.Background()

	const callers = 50
	const limit = 10

	var wg sync.WaitGroup
	allowed := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := tracker.CheckAndIncrement(ctx, "notify:contended", limit, time.Hour)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if decision.Allowed {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	if count != limit {
		t.Fatalf("expected exactly %d allowed calls, got %d", limit, count)
	}
}
