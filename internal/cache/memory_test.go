package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("value1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "value1" {
		t.Errorf("expected value1, got %s", string(val))
	}

	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := c.Get(ctx, "key1"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	// Delete is idempotent
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := c.Get(ctx, "short"); err != nil {
		t.Fatalf("expected hit before expiry, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after expiry, got %v", err)
	}

	// The expiration callback must have pruned the key-set index too
	for _, k := range c.Keys() {
		if k == "short" {
			t.Error("expired key still present in key index")
		}
	}
}

func TestMemoryCache_OverwriteKeepsNewValue(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("old"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("new"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The first entry's timer must not evict the replacement
	time.Sleep(60 * time.Millisecond)

	val, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "new" {
		t.Errorf("expected new, got %s", string(val))
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	keys := []string{
		"guide_all_true",
		"guide_slug_veri-yapilari_tr",
		"Guide_related_7",
		"category_all_true",
	}
	for _, k := range keys {
		if err := c.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}

	if err := c.DeleteByPrefix(ctx, "guide_"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	for _, k := range []string{"guide_all_true", "guide_slug_veri-yapilari_tr", "Guide_related_7"} {
		if _, err := c.Get(ctx, k); err != ErrCacheMiss {
			t.Errorf("expected %q removed, got err=%v", k, err)
		}
	}

	if _, err := c.Get(ctx, "category_all_true"); err != nil {
		t.Errorf("category key must survive guide invalidation, got %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := c.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if got := len(c.Keys()); got != 0 {
		t.Errorf("expected empty index after Clear, got %d keys", got)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("guide_%d_%d", n, j)
				_ = c.Set(ctx, key, []byte("v"), 0)
				_, _ = c.Get(ctx, key)
				if j%10 == 0 {
					_ = c.DeleteByPrefix(ctx, fmt.Sprintf("guide_%d_", n))
				}
			}
		}(i)
	}
	wg.Wait()
}

// Overwrites racing the expiration callback must leave every live
// entry registered in the key-set index, or DeleteByPrefix would skip
// it until its own TTL fired.
func TestMemoryCache_EvictionRaceKeepsIndexConsistent(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("guide_race_%d", n)
			for j := 0; j < 200; j++ {
				// Microsecond TTLs force the timer callback to
				// overlap the next overwrite; the follow-up write
				// is long-lived so the final state is stable.
				_ = c.Set(ctx, key, []byte("v"), time.Microsecond)
				_ = c.Set(ctx, key, []byte("v"), 0)
			}
		}(i)
	}
	wg.Wait()

	// Let any still-pending microsecond timers fire.
	time.Sleep(20 * time.Millisecond)

	c.data.Range(func(key, _ any) bool {
		if _, ok := c.keys.Load(key); !ok {
			t.Errorf("key %v live in store but missing from index", key)
		}
		return true
	})
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_ = c.Close()

	if _, err := c.Get(ctx, "k"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.Items != 1 {
		t.Errorf("expected 1 item, got %d", stats.Items)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("stats not reset: %+v", s)
	}
}
