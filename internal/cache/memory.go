// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// keyLockStripes sizes the striped lock set guarding paired
// store+index mutations.
const keyLockStripes = 64

// MemoryCache is a thread-safe in-memory cache implementation.
//
// Alongside the backing store it maintains a live key-set index used by
// DeleteByPrefix. The index is pruned by each entry's expiration timer,
// not lazily, so prefix scans only ever walk live keys and the index and
// backing store cannot diverge.
type MemoryCache struct {
	data       sync.Map // key -> *memoryCacheEntry
	keys       sync.Map // key -> struct{}, the live key-set index
	defaultTTL time.Duration
	closed     atomic.Bool

	// keyLocks serializes each key's paired store+index mutation so an
	// expiration callback cannot interleave with a concurrent overwrite
	// and strand the new entry outside the index.
	keyLocks [keyLockStripes]sync.Mutex

	// Statistics
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// memoryCacheEntry holds a cached value, its expiration time and the
// timer that evicts it.
type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
	timer     *time.Timer
}

// NewMemoryCache creates a memory cache with the given default TTL.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{defaultTTL: defaultTTL}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	val, ok := c.data.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	entry := val.(*memoryCacheEntry)
	if time.Now().After(entry.expiresAt) {
		// Timer has not fired yet; evict now
		c.evict(key, entry)
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	// Return a copy to prevent mutation
	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with the specified TTL and registers the key in the
// key-set index. An existing entry for the key is overwritten and its
// timer stopped.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	entry := &memoryCacheEntry{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}
	// The expiration callback prunes both the backing store and the
	// key-set index, guarded by entry identity so it never removes a
	// newer value written under the same key.
	entry.timer = time.AfterFunc(ttl, func() {
		c.evict(key, entry)
	})

	lock := c.keyLock(key)
	lock.Lock()
	if old, loaded := c.data.Swap(key, entry); loaded {
		old.(*memoryCacheEntry).timer.Stop()
	}
	c.keys.Store(key, struct{}{})
	lock.Unlock()
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the backing store and the key-set index.
// It is idempotent.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	if val, loaded := c.data.LoadAndDelete(key); loaded {
		val.(*memoryCacheEntry).timer.Stop()
	}
	c.keys.Delete(key)
	return nil
}

// DeleteByPrefix removes every live key whose prefix matches,
// case-insensitively. The scan walks the key-set index, which holds only
// live keys.
func (c *MemoryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	foldedPrefix := strings.ToLower(prefix)
	c.keys.Range(func(key, _ any) bool {
		k := key.(string)
		if len(k) >= len(foldedPrefix) && strings.ToLower(k[:len(foldedPrefix)]) == foldedPrefix {
			_ = c.Delete(ctx, k)
		}
		return true
	})
	return nil
}

// Clear removes everything. Used for administrative cache reset.
func (c *MemoryCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.keys.Range(func(key, _ any) bool {
		_ = c.Delete(ctx, key.(string))
		return true
	})
	return nil
}

// Close marks the cache closed and stops all pending timers.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.data.Range(func(key, value any) bool {
			value.(*memoryCacheEntry).timer.Stop()
			c.data.Delete(key)
			c.keys.Delete(key)
			return true
		})
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   c.count(),
		HitRate: hitRate,
	}
}

// ResetStats resets the cache statistics.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

// Keys returns the live keys tracked by the index.
func (c *MemoryCache) Keys() []string {
	var keys []string
	c.keys.Range(func(key, _ any) bool {
		keys = append(keys, key.(string))
		return true
	})
	return keys
}

// evict removes an entry from the store and the index, but only while it
// is still the current value for the key. The key lock keeps the
// identity check and the index prune atomic with respect to Set.
func (c *MemoryCache) evict(key string, entry *memoryCacheEntry) {
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	if c.data.CompareAndDelete(key, entry) {
		c.keys.Delete(key)
	}
}

func (c *MemoryCache) keyLock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.keyLocks[h.Sum32()%keyLockStripes]
}

// count returns the number of live items.
func (c *MemoryCache) count() int {
	count := 0
	c.keys.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Ensure MemoryCache implements Cacher and StatsProvider.
var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
